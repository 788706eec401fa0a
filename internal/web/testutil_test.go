package web

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"inkwell/internal/models"
	"inkwell/internal/store"
)

// fakeStore is an in-memory store.Store used to drive the handlers
// through real HTTP round trips.
type fakeStore struct {
	mu       sync.Mutex
	users    map[int64]*models.User
	posts    map[int64]*models.Post
	nextUser int64
	nextPost int64
}

var _ store.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: map[int64]*models.User{},
		posts: map[int64]*models.Post{},
	}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}

func (f *fakeStore) clonePost(p *models.Post) *models.Post {
	c := *p
	if author, ok := f.users[p.UserID]; ok {
		c.Author = cloneUser(author)
	}
	return &c
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return store.ErrDuplicateUsername
		}
		if existing.Email == user.Email {
			return store.ErrDuplicateEmail
		}
	}
	f.nextUser++
	user.ID = f.nextUser
	if user.RegisteredAt.IsZero() {
		user.RegisteredAt = time.Now().UTC()
	}
	f.users[user.ID] = cloneUser(user)
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneUser(user), nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username {
			return cloneUser(user), nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) UpdateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	for _, existing := range f.users {
		if existing.ID == user.ID {
			continue
		}
		if existing.Username == user.Username {
			return store.ErrDuplicateUsername
		}
		if existing.Email == user.Email {
			return store.ErrDuplicateEmail
		}
	}
	f.users[user.ID] = cloneUser(user)
	return nil
}

func (f *fakeStore) DeleteUserAndPosts(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	for postID, post := range f.posts {
		if post.UserID == id {
			delete(f.posts, postID)
		}
	}
	delete(f.users, id)
	return nil
}

func (f *fakeStore) ListUsers(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []models.User
	for _, user := range f.users {
		users = append(users, *cloneUser(user))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID > users[j].ID })
	return users, nil
}

func (f *fakeStore) RecentUsers(ctx context.Context, limit int) ([]models.User, error) {
	users, err := f.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (f *fakeStore) CountUsers(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

func (f *fakeStore) CreatePost(_ context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextPost++
	post.ID = f.nextPost
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	clone := *post
	clone.Author = nil
	f.posts[post.ID] = &clone
	return nil
}

func (f *fakeStore) GetPost(_ context.Context, id int64) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return f.clonePost(post), nil
}

func (f *fakeStore) UpdatePost(_ context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.posts[post.ID]
	if !ok {
		return store.ErrNotFound
	}
	existing.Title = post.Title
	existing.Body = post.Body
	return nil
}

func (f *fakeStore) DeletePost(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakeStore) listPostsLocked() []models.Post {
	var posts []models.Post
	for _, post := range f.posts {
		posts = append(posts, *f.clonePost(post))
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	return posts
}

func (f *fakeStore) ListPosts(_ context.Context) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listPostsLocked(), nil
}

func (f *fakeStore) ListPostsByUser(_ context.Context, userID int64) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var posts []models.Post
	for _, post := range f.listPostsLocked() {
		if post.UserID == userID {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (f *fakeStore) RecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	posts, err := f.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (f *fakeStore) IncrementViews(_ context.Context, id int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	post.Views++
	return post.Views, nil
}

func (f *fakeStore) CountPosts(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.posts)), nil
}

func (f *fakeStore) SumViews(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for _, post := range f.posts {
		total += post.Views
	}
	return total, nil
}

func (f *fakeStore) SumViewsByUser(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for _, post := range f.posts {
		if post.UserID == userID {
			total += post.Views
		}
	}
	return total, nil
}

func (f *fakeStore) PostAuthors(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[int64]bool{}
	var authors []models.User
	for _, post := range f.posts {
		if seen[post.UserID] {
			continue
		}
		seen[post.UserID] = true
		if user, ok := f.users[post.UserID]; ok {
			authors = append(authors, *cloneUser(user))
		}
	}
	sort.Slice(authors, func(i, j int) bool { return authors[i].Username < authors[j].Username })
	return authors, nil
}

func newTestApp(t *testing.T) (*App, *fakeStore) {
	t.Helper()

	discard := log.New(io.Discard, "", 0)
	fs := newFakeStore()
	app, err := NewApp(discard, discard, fs, time.UTC, time.Hour)
	require.NoError(t, err)
	return app, fs
}

func seedUser(t *testing.T, fs *fakeStore, username, email, password string, admin bool) *models.User {
	t.Helper()

	user := &models.User{
		Username:   username,
		Email:      email,
		IsAdmin:    admin,
		AvatarHash: models.AvatarHash(email),
	}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, fs.CreateUser(context.Background(), user))
	return user
}

func seedPost(t *testing.T, fs *fakeStore, author *models.User, title, body string) *models.Post {
	t.Helper()

	post := &models.Post{Title: title, Body: body, UserID: author.ID}
	require.NoError(t, fs.CreatePost(context.Background(), post))
	return post
}

// testClient wraps an httptest client with a cookie jar so sessions
// survive across requests. Redirects are not followed, so tests can
// assert on them.
type testClient struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newTestClient(t *testing.T, baseURL string) *testClient {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{
		t:    t,
		base: baseURL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *testClient) get(path string) (int, http.Header, string) {
	c.t.Helper()

	res, err := c.client.Get(c.base + path)
	require.NoError(c.t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(c.t, err)
	return res.StatusCode, res.Header, string(body)
}

func (c *testClient) postForm(path string, form url.Values) (int, http.Header, string) {
	c.t.Helper()

	res, err := c.client.PostForm(c.base+path, form)
	require.NoError(c.t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(c.t, err)
	return res.StatusCode, res.Header, string(body)
}

func (c *testClient) login(email, password string) {
	c.t.Helper()

	status, _, _ := c.postForm("/login", url.Values{
		"email":    {email},
		"password": {password},
	})
	require.Equal(c.t, http.StatusSeeOther, status, "login should succeed")
}
