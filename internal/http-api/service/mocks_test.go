package service

import (
	"context"
	"sync"

	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/mailer"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, search string, page repository.Pagination) ([]models.User, int64, error) {
	args := m.Called(ctx, search, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

// MockMailer records sent messages
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// passthroughTx runs fn directly; the fakes below have no rollback.
type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeTitleRepo struct {
	mu     sync.Mutex
	titles map[int64]*models.Title
	locks  int
}

func newFakeTitleRepo(titles ...models.Title) *fakeTitleRepo {
	r := &fakeTitleRepo{titles: map[int64]*models.Title{}}
	for i := range titles {
		t := titles[i]
		r.titles[t.ID] = &t
	}
	return r
}

func (r *fakeTitleRepo) List(context.Context, repository.TitleFilter, repository.Pagination) ([]models.Title, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]models.Title, 0, len(r.titles))
	for _, t := range r.titles {
		list = append(list, *t)
	}
	return list, int64(len(list)), nil
}

func (r *fakeTitleRepo) GetByID(_ context.Context, id int64) (*models.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.titles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTitleRepo) LockByID(ctx context.Context, id int64) (*models.Title, error) {
	r.mu.Lock()
	r.locks++
	r.mu.Unlock()
	return r.GetByID(ctx, id)
}

func (r *fakeTitleRepo) Create(_ context.Context, t *models.Title) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = int64(len(r.titles) + 1)
	cp := *t
	r.titles[t.ID] = &cp
	return nil
}

func (r *fakeTitleRepo) Update(_ context.Context, t *models.Title) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.titles[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	rating := stored.Rating
	cp := *t
	cp.Rating = rating
	r.titles[t.ID] = &cp
	return nil
}

func (r *fakeTitleRepo) ReplaceGenres(_ context.Context, t *models.Title, genres []models.Genre) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles[t.ID].Genres = genres
	return nil
}

func (r *fakeTitleRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.titles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.titles, id)
	return nil
}

func (r *fakeTitleRepo) SetRating(_ context.Context, id int64, rating *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.titles[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Rating = rating
	return nil
}

func (r *fakeTitleRepo) rating(id int64) *int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.titles[id].Rating
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews []models.Review
	nextID  int64
}

func (r *fakeReviewRepo) Create(_ context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.TitleID == review.TitleID && existing.AuthorID == review.AuthorID {
			return repository.ErrDuplicate
		}
	}
	r.nextID++
	review.ID = r.nextID
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *fakeReviewRepo) Update(_ context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.reviews {
		if r.reviews[i].ID == review.ID {
			r.reviews[i].Text = review.Text
			r.reviews[i].Score = review.Score
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeReviewRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.reviews {
		if r.reviews[i].ID == id {
			r.reviews = append(r.reviews[:i], r.reviews[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeReviewRepo) GetByID(_ context.Context, titleID, id int64) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, review := range r.reviews {
		if review.ID == id && review.TitleID == titleID {
			cp := review
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeReviewRepo) ListByTitle(_ context.Context, titleID int64, _ repository.Pagination) ([]models.Review, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []models.Review
	for _, review := range r.reviews {
		if review.TitleID == titleID {
			list = append(list, review)
		}
	}
	return list, int64(len(list)), nil
}

func (r *fakeReviewRepo) ExistsByTitleAndAuthor(_ context.Context, titleID int64, authorID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, review := range r.reviews {
		if review.TitleID == titleID && review.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReviewRepo) ScoreStats(_ context.Context, titleID int64) (repository.ScoreStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stats repository.ScoreStats
	for _, review := range r.reviews {
		if review.TitleID == titleID {
			stats.Count++
			stats.Sum += int64(review.Score)
		}
	}
	return stats, nil
}

type fakeCommentRepo struct {
	comments []models.Comment
	nextID   int64
	locks    int
}

func (r *fakeCommentRepo) Create(_ context.Context, c *models.Comment) error {
	r.nextID++
	c.ID = r.nextID
	r.comments = append(r.comments, *c)
	return nil
}

func (r *fakeCommentRepo) Update(_ context.Context, c *models.Comment) error {
	for i := range r.comments {
		if r.comments[i].ID == c.ID {
			r.comments[i].Text = c.Text
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeCommentRepo) Delete(_ context.Context, id int64) error {
	for i := range r.comments {
		if r.comments[i].ID == id {
			r.comments = append(r.comments[:i], r.comments[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeCommentRepo) GetByID(_ context.Context, reviewID, id int64) (*models.Comment, error) {
	for _, c := range r.comments {
		if c.ID == id && c.ReviewID == reviewID {
			cp := c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCommentRepo) LockByID(ctx context.Context, reviewID, id int64) (*models.Comment, error) {
	r.locks++
	return r.GetByID(ctx, reviewID, id)
}

func (r *fakeCommentRepo) ListByReview(_ context.Context, reviewID int64, _ repository.Pagination) ([]models.Comment, int64, error) {
	var list []models.Comment
	for _, c := range r.comments {
		if c.ReviewID == reviewID {
			list = append(list, c)
		}
	}
	return list, int64(len(list)), nil
}
