package contentserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluqqy/pluqqy-studio/pkg/content"
	"github.com/pluqqy/pluqqy-studio/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestClient serves a fresh store and returns a client talking to it
func newTestClient(t *testing.T, token string) (*content.Client, *Store) {
	t.Helper()
	store := openTestStore(t)
	srv := httptest.NewServer(New(store, token).Router())
	t.Cleanup(srv.Close)
	return content.NewClient(srv.URL, content.StaticToken(token)), store
}

func TestServer_ProjectLifecycle(t *testing.T) {
	client, _ := newTestClient(t, "")
	ctx := context.Background()

	p, err := client.CreateProject(ctx, "", "a fox who loves the moon")
	require.NoError(t, err)
	assert.Equal(t, "A Fox Who Loves The Moon", p.Title)
	assert.False(t, p.Generated())

	title, err := client.UpdateTitle(ctx, p.ID, "Moon Fox")
	require.NoError(t, err)
	assert.Equal(t, "Moon Fox", title.Title)

	got, err := client.GetTitle(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Moon Fox", got.Title)

	generated, err := client.Generate(ctx, p.ID, models.GenerationRequest{
		Concept:      "A fox who loves the moon",
		CharacterIDs: []string{"fox"},
		Style:        "minimalist",
	})
	require.NoError(t, err)
	assert.True(t, generated.Generated())
	assert.Equal(t, "Moon Fox", generated.Title, "a chosen title is kept")
	require.Len(t, generated.Pages, 4)
	assert.Equal(t, "Once upon a time, a fox who loves the moon.", generated.Pages[0].ScriptText)
	assert.Equal(t, "minimalist", generated.Pages[0].ImageStyle)
	assert.Equal(t, []string{"fox"}, generated.Pages[0].CharacterIDs)
}

func TestServer_PageContract(t *testing.T) {
	client, _ := newTestClient(t, "")
	ctx := context.Background()

	p, err := client.CreateProject(ctx, "Moon", "")
	require.NoError(t, err)
	for _, text := range []string{"one", "two", "three"} {
		_, err := client.AddPage(ctx, p.ID, models.PageContent{ScriptText: text})
		require.NoError(t, err)
	}

	merged, err := client.UpdatePage(ctx, p.ID, 2, models.PageUpdate{ImageStyle: models.StringPtr("digital-cartoon")})
	require.NoError(t, err)
	assert.Equal(t, "two", merged.ScriptText)
	assert.Equal(t, "digital-cartoon", merged.ImageStyle)

	// Writing back what was read changes nothing
	page, err := client.GetPage(ctx, p.ID, 2)
	require.NoError(t, err)
	echo, err := client.UpdatePage(ctx, p.ID, 2, page.Fields().Update())
	require.NoError(t, err)
	assert.Equal(t, page, echo)

	require.NoError(t, client.DeletePage(ctx, p.ID, 1))
	got, err := client.GetProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Pages, 2)
	assert.Equal(t, 1, got.Pages[0].Number)
	assert.Equal(t, "two", got.Pages[0].ScriptText)

	_, err = client.GetPage(ctx, p.ID, 3)
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestServer_Validation(t *testing.T) {
	client, _ := newTestClient(t, "")
	ctx := context.Background()
	p, err := client.CreateProject(ctx, "Moon", "")
	require.NoError(t, err)
	_, err = client.AddPage(ctx, p.ID, models.PageContent{ScriptText: "one"})
	require.NoError(t, err)

	_, err = client.UpdateTitle(ctx, p.ID, "")
	assert.ErrorIs(t, err, content.ErrInvalid)

	_, err = client.UpdatePage(ctx, p.ID, 1, models.PageUpdate{})
	require.ErrorIs(t, err, content.ErrInvalid)
	var apiErr *content.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "No fields to update", apiErr.Detail)

	_, err = client.Generate(ctx, p.ID, models.GenerationRequest{Concept: " "})
	assert.ErrorIs(t, err, content.ErrInvalid)

	_, err = client.GetProject(ctx, "missing")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestServer_BadPageNumber(t *testing.T) {
	store := openTestStore(t)
	router := New(store, "").Router()

	req := httptest.NewRequest(http.MethodGet, "/projects/p1/pages/zero", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Page number must be a positive integer"}`, rec.Body.String())
}

func TestServer_BearerToken(t *testing.T) {
	store := openTestStore(t)
	srv := httptest.NewServer(New(store, "secret").Router())
	defer srv.Close()
	ctx := context.Background()

	_, err := content.NewClient(srv.URL, content.StaticToken("")).CreateProject(ctx, "Moon", "")
	assert.ErrorIs(t, err, content.ErrUnauthorized)

	_, err = content.NewClient(srv.URL, content.StaticToken("wrong")).CreateProject(ctx, "Moon", "")
	assert.ErrorIs(t, err, content.ErrUnauthorized)

	_, err = content.NewClient(srv.URL, content.StaticToken("secret")).CreateProject(ctx, "Moon", "")
	assert.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Config.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "health checks need no token")
}

func TestServer_Chat(t *testing.T) {
	client, _ := newTestClient(t, "")
	ctx := context.Background()
	p, err := client.CreateProject(ctx, "Moon", "")
	require.NoError(t, err)
	_, err = client.Generate(ctx, p.ID, models.GenerationRequest{Concept: "a fox"})
	require.NoError(t, err)

	reply, err := client.Chat(ctx, p.ID, "How many pages are there?")
	require.NoError(t, err)
	assert.Equal(t, models.ChatActionQuestion, reply.Action)
	assert.Contains(t, reply.AssistantMessage, "4 pages")

	reply, err = client.Chat(ctx, p.ID, "Make page 2 funnier")
	require.NoError(t, err)
	assert.Equal(t, models.ChatActionEdit, reply.Action)

	page, err := client.GetPage(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(page.ScriptText, "(Make page 2 funnier)"))

	reply, err = client.Chat(ctx, p.ID, "Make it funnier")
	require.NoError(t, err)
	assert.Equal(t, models.ChatActionQuestion, reply.Action, "an edit without a page asks which page")
}

func TestDraftPages(t *testing.T) {
	pages := DraftPages(models.GenerationRequest{Concept: "  A dragon learns to bake. ", CharacterIDs: []string{"ember", "ember"}, Style: "unknown"})
	require.Len(t, pages, 4)
	assert.Equal(t, "Once upon a time, a dragon learns to bake.", pages[0].ScriptText)
	assert.Equal(t, models.ArtStyles[0].ID, pages[0].ImageStyle, "unknown styles fall back to the first entry")
	assert.Equal(t, []string{"ember"}, pages[0].CharacterIDs)
	assert.Contains(t, pages[0].ImagePrompt, "Watercolor Fantasy illustration of ember")

	assert.Equal(t, pages, DraftPages(models.GenerationRequest{Concept: "  A dragon learns to bake. ", CharacterIDs: []string{"ember", "ember"}, Style: "unknown"}))
}

func TestClassifyChat(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"Make page 2 funnier", models.ChatActionEdit},
		{"please rewrite page 1", models.ChatActionEdit},
		{"Rename the fox, please", models.ChatActionEdit},
		{"Why is the fox sad?", models.ChatActionQuestion},
		{"", models.ChatActionQuestion},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyChat(tt.message), tt.message)
	}
	assert.Equal(t, 2, EditTarget("make Page 2 funnier"))
	assert.Equal(t, 0, EditTarget("make it funnier"))
}

func TestDraftTitle(t *testing.T) {
	assert.Equal(t, "A Fox Who Loves The Moon", DraftTitle("a fox who loves the moon"))
	assert.Equal(t, "One Two Three Four Five Six", DraftTitle("one two three four five six seven"))
	assert.Equal(t, "", DraftTitle("   "))
}
