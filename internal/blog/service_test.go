package blog

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepository struct {
	mu    sync.Mutex
	posts map[string]*Post
	tick  time.Time
}

func newMemRepository() *memRepository {
	return &memRepository{posts: map[string]*Post{}, tick: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memRepository) Create(_ context.Context, p *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tick = m.tick.Add(time.Minute)
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = m.tick, m.tick
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *memRepository) GetByID(_ context.Context, id string) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepository) List(_ context.Context, f Filter) ([]*Post, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Post
	for _, p := range m.posts {
		if f.Tag != "" && !slices.Contains(p.Tags, f.Tag) {
			continue
		}
		if f.Keyword != "" && !strings.Contains(strings.ToLower(p.Title+" "+p.Content), strings.ToLower(f.Keyword)) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, len(out), nil
}

func (m *memRepository) Update(_ context.Context, p *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *memRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

type recordingRemover struct{ deleted []string }

func (r *recordingRemover) Delete(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	return nil
}

const authorID = "44444444-4444-4444-4444-444444444444"

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading", "# Hello", "<h1>Hello</h1>"},
		{"emphasis", "some **bold** text", "<strong>bold</strong>"},
		{"hard wrap", "line one\nline two", "line one<br>"},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |", "<table>"},
		{"raw html escaped", "<script>alert(1)</script>", "<!-- raw HTML omitted -->"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, RenderMarkdown(tt.in), tt.want)
		})
	}
	assert.NotContains(t, RenderMarkdown("<script>alert(1)</script>"), "<script>")
}

func TestCreateNormalizesAndRenders(t *testing.T) {
	svc := NewService(newMemRepository(), &recordingRemover{})

	p, err := svc.Create(context.Background(), CreateRequest{
		Title:    "  Goal setting  ",
		Content:  "## Why goals matter",
		Tags:     []string{"Goals", " goals ", "", "Mindset"},
		AuthorID: authorID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Goal setting", p.Title)
	assert.Equal(t, []string{"goals", "mindset"}, p.Tags)
	assert.Contains(t, p.ContentHTML, "<h2>Why goals matter</h2>")
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemRepository(), &recordingRemover{})
	many := make([]string, MaxTags+1)
	for i := range many {
		many[i] = uuid.NewString()
	}

	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"blank title", CreateRequest{Title: " ", Content: "x"}, ErrTitleRequired},
		{"blank content", CreateRequest{Title: "x", Content: "\n"}, ErrContentRequired},
		{"too many tags", CreateRequest{Title: "x", Content: "x", Tags: many}, ErrTooManyTags},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestListNewestFirstWithTagFilter(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepository(), &recordingRemover{})
	for _, title := range []string{"first", "second", "third"} {
		tags := []string{"news"}
		if title == "second" {
			tags = []string{"tips"}
		}
		_, err := svc.Create(ctx, CreateRequest{Title: title, Content: "body", Tags: tags, AuthorID: authorID})
		require.NoError(t, err)
	}

	all, total, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	assert.Equal(t, "third", all[0].Title)
	assert.NotEmpty(t, all[0].ContentHTML)

	tagged, total, err := svc.List(ctx, Filter{Tag: " NEWS "})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	assert.Equal(t, []string{"third", "first"}, []string{tagged[0].Title, tagged[1].Title})
}

func TestUpdateAndImageLifecycle(t *testing.T) {
	ctx := context.Background()
	images := &recordingRemover{}
	svc := NewService(newMemRepository(), images)
	p, err := svc.Create(ctx, CreateRequest{Title: "t", Content: "old", AuthorID: authorID})
	require.NoError(t, err)

	content := "*new*"
	updated, err := svc.Update(ctx, p.ID, UpdateRequest{Content: &content})
	require.NoError(t, err)
	assert.Contains(t, updated.ContentHTML, "<em>new</em>")
	assert.Equal(t, "t", updated.Title)

	blank := ""
	_, err = svc.Update(ctx, p.ID, UpdateRequest{Title: &blank})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = svc.SetImage(ctx, p.ID, "img-1")
	require.NoError(t, err)
	_, err = svc.SetImage(ctx, p.ID, "img-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"img-1"}, images.deleted)

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.Equal(t, []string{"img-1", "img-2"}, images.deleted)
	assert.ErrorIs(t, svc.Delete(ctx, p.ID), ErrNotFound)
}
