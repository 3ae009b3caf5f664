package httpserver

import (
	"context"
	"sort"
	"sync"

	"github.com/Clark-Hu/horror-movies-api/internal/domain"
	"github.com/Clark-Hu/horror-movies-api/internal/paging"
	"github.com/Clark-Hu/horror-movies-api/internal/repository"
)

type fakeHealth struct{ err error }

func (f fakeHealth) HealthCheck(ctx context.Context) error { return f.err }

func pageOf[T any](items []T, number, size int) paging.List[T] {
	page := paging.New(int64(len(items)), number, size)
	start := page.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return paging.List[T]{Items: append([]T{}, items[start:end]...), Page: page}
}

// fakeDirectors keeps directors in memory and counts mutations.
type fakeDirectors struct {
	mu      sync.Mutex
	items   map[int64]domain.Director
	nextID  int64
	err     error
	updates int
	deletes int
}

func newFakeDirectors(seed ...domain.Director) *fakeDirectors {
	f := &fakeDirectors{items: make(map[int64]domain.Director)}
	for _, d := range seed {
		f.nextID++
		d.ID = f.nextID
		f.items[d.ID] = d
	}
	return f
}

func (f *fakeDirectors) List(ctx context.Context, filters repository.DirectorListFilters) (paging.List[domain.Director], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return paging.List[domain.Director]{}, f.err
	}
	var all []domain.Director
	for _, d := range f.items {
		if filters.BirthCountry != "" && d.BirthCountry != filters.BirthCountry {
			continue
		}
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return pageOf(all, filters.Page, filters.PageSize), nil
}

func (f *fakeDirectors) GetByID(ctx context.Context, id int64, includeMovies bool) (domain.Director, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Director{}, f.err
	}
	d, ok := f.items[id]
	if !ok {
		return domain.Director{}, repository.ErrNotFound
	}
	if includeMovies && d.Movies == nil {
		d.Movies = []domain.Movie{}
	}
	return d, nil
}

func (f *fakeDirectors) Add(ctx context.Context, director domain.Director) (domain.Director, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Director{}, f.err
	}
	f.nextID++
	director.ID = f.nextID
	f.items[director.ID] = director
	return director, nil
}

func (f *fakeDirectors) Update(ctx context.Context, director domain.Director) (domain.Director, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[director.ID]; !ok {
		return domain.Director{}, repository.ErrNotFound
	}
	f.updates++
	f.items[director.ID] = director
	return director, nil
}

func (f *fakeDirectors) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	f.deletes++
	delete(f.items, id)
	return nil
}

// fakeActors keeps actors in memory, ordered by last name like the real store.
type fakeActors struct {
	mu          sync.Mutex
	items       map[int64]domain.Actor
	nextID      int64
	lastFilters repository.ActorListFilters
	updates     int
	deletes     int
}

func newFakeActors(seed ...domain.Actor) *fakeActors {
	f := &fakeActors{items: make(map[int64]domain.Actor)}
	for _, a := range seed {
		f.nextID++
		a.ID = f.nextID
		f.items[a.ID] = a
	}
	return f
}

func (f *fakeActors) List(ctx context.Context, filters repository.ActorListFilters) (paging.List[domain.Actor], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilters = filters
	var all []domain.Actor
	for _, a := range f.items {
		if filters.FirstName != "" && a.FirstName != filters.FirstName {
			continue
		}
		if filters.IncludeMovies && a.Castings == nil {
			a.Castings = []domain.Casting{}
		}
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].LastName != all[j].LastName {
			return all[i].LastName < all[j].LastName
		}
		return all[i].ID < all[j].ID
	})
	return pageOf(all, filters.Page, filters.PageSize), nil
}

func (f *fakeActors) GetByID(ctx context.Context, id int64, includeMovies bool) (domain.Actor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return domain.Actor{}, repository.ErrNotFound
	}
	if includeMovies && a.Castings == nil {
		a.Castings = []domain.Casting{}
	}
	return a, nil
}

func (f *fakeActors) Add(ctx context.Context, actor domain.Actor) (domain.Actor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	actor.ID = f.nextID
	f.items[actor.ID] = actor
	return actor, nil
}

func (f *fakeActors) Update(ctx context.Context, actor domain.Actor) (domain.Actor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[actor.ID]; !ok {
		return domain.Actor{}, repository.ErrNotFound
	}
	f.updates++
	f.items[actor.ID] = actor
	return actor, nil
}

func (f *fakeActors) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	f.deletes++
	delete(f.items, id)
	return nil
}

// fakeMovies records the last list filters and rejects unknown directors.
type fakeMovies struct {
	mu          sync.Mutex
	items       []domain.Movie
	directors   map[int64]bool
	lastFilters repository.MovieListFilters
	updates     int
	deletes     int
}

func (f *fakeMovies) List(ctx context.Context, filters repository.MovieListFilters) (paging.List[domain.Movie], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilters = filters
	return pageOf(f.items, filters.Page, filters.PageSize), nil
}

func (f *fakeMovies) GetByID(ctx context.Context, id int64, includeActors bool) (domain.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.items {
		if m.ID == id {
			if includeActors && m.Castings == nil {
				m.Castings = []domain.Casting{}
			}
			return m, nil
		}
	}
	return domain.Movie{}, repository.ErrNotFound
}

func (f *fakeMovies) Add(ctx context.Context, movie domain.Movie) (domain.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.directors[movie.DirectorID] {
		return domain.Movie{}, repository.ErrInvalidReference
	}
	movie.ID = int64(len(f.items) + 1)
	f.items = append(f.items, movie)
	return movie, nil
}

func (f *fakeMovies) Update(ctx context.Context, movie domain.Movie) (domain.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.items {
		if m.ID != movie.ID {
			continue
		}
		if !f.directors[movie.DirectorID] {
			return domain.Movie{}, repository.ErrInvalidReference
		}
		f.updates++
		f.items[i] = movie
		return movie, nil
	}
	return domain.Movie{}, repository.ErrNotFound
}

func (f *fakeMovies) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.items {
		if m.ID == id {
			f.deletes++
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type castingKey struct{ movieID, actorID int64 }

// fakeCastings accepts movie and actor ids below 100.
type fakeCastings struct {
	mu    sync.Mutex
	roles map[castingKey]string
}

func (f *fakeCastings) Upsert(ctx context.Context, params repository.CastingUpsertParams) (domain.Casting, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if params.MovieID >= 100 || params.ActorID >= 100 {
		return domain.Casting{}, false, repository.ErrInvalidReference
	}
	if f.roles == nil {
		f.roles = make(map[castingKey]string)
	}
	key := castingKey{params.MovieID, params.ActorID}
	_, existed := f.roles[key]
	f.roles[key] = params.Role
	return domain.Casting{MovieID: params.MovieID, ActorID: params.ActorID, Role: params.Role}, !existed, nil
}

func (f *fakeCastings) Delete(ctx context.Context, movieID, actorID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := castingKey{movieID, actorID}
	if _, ok := f.roles[key]; !ok {
		return repository.ErrNotFound
	}
	delete(f.roles, key)
	return nil
}
