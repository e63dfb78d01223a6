package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type voterPage struct {
	Items []struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

func listVoters(t *testing.T, app *testApp, postID string, limit int, cursor string) voterPage {
	t.Helper()

	url := fmt.Sprintf("%s/api/posts/%s/voters?limit=%d&cursor=%s", app.Server.URL, postID, limit, cursor)
	resp, err := app.Client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page voterPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	return page
}

func TestListVotersPaginationWalk(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	author := createVoter(t, app, "author")
	postID := createPost(t, app, author)

	const total = 25
	want := map[string]bool{}
	for i := 0; i < total; i++ {
		voter := fmt.Sprintf("voter-%02d", i)
		want[voter] = true
		token := createVoter(t, app, voter)
		require.Equal(t, http.StatusNoContent, castVote(t, app, token, postID, 1).StatusCode)
	}

	seen := map[string]bool{}
	cursor := ""
	for _, wantLen := range []int{10, 10, 5} {
		page := listVoters(t, app, postID, 10, cursor)
		require.Len(t, page.Items, wantLen)
		for _, item := range page.Items {
			assert.False(t, seen[item.ID], "duplicate voter %s", item.ID)
			seen[item.ID] = true
		}
		require.NotEmpty(t, page.NextPageToken)
		cursor = page.NextPageToken
	}
	assert.Equal(t, want, seen)

	// clients detect the end by an empty page
	page := listVoters(t, app, postID, 10, cursor)
	assert.Empty(t, page.Items)
}

func TestListVotersIncludesRetracted(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	token := createVoter(t, app, "u1")
	postID := createPost(t, app, token)

	require.Equal(t, http.StatusNoContent, castVote(t, app, token, postID, 1).StatusCode)
	require.Equal(t, http.StatusNoContent, castVote(t, app, token, postID, 0).StatusCode)

	page := listVoters(t, app, postID, 10, "")
	require.Len(t, page.Items, 1)
	assert.Equal(t, "u1", page.Items[0].ID)
}

func TestListVotersEmptyVotable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	token := createVoter(t, app, "u1")
	postID := createPost(t, app, token)

	page := listVoters(t, app, postID, 10, "")
	assert.Empty(t, page.Items)
}
