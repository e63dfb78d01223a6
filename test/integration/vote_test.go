package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askaway/backend/internal/core/domain"
)

func createPost(t *testing.T, app *testApp, token string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"title": "Best way to learn Go?"})
	req, err := http.NewRequest("POST", app.Server.URL+"/api/posts", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		VotableID string `json:"votable_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.VotableID)
	return created.VotableID
}

func castVote(t *testing.T, app *testApp, token, votableID string, dir int) *http.Response {
	t.Helper()

	url := fmt.Sprintf("%s/api/votables/%s/vote?dir=%d", app.Server.URL, votableID, dir)
	req, err := http.NewRequest("POST", url, nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func score(t *testing.T, app *testApp, votableID string) int64 {
	t.Helper()

	resp, err := app.Client.Get(fmt.Sprintf("%s/api/votables/%s/score", app.Server.URL, votableID))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Score int64 `json:"score"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Score
}

func voteRecordCount(t *testing.T, app *testApp, votableID string) int {
	t.Helper()

	var count int
	err := app.DB.QueryRow(
		`SELECT COUNT(*) FROM entities WHERE kind = 'vote' AND data->>'votable_key' = $1`,
		votableID,
	).Scan(&count)
	require.NoError(t, err)
	return count
}

func TestVoteLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	token := createVoter(t, app, "u1")
	postID := createPost(t, app, token)

	// fresh votable sums to zero across its shards
	assert.Equal(t, int64(0), score(t, app, postID))

	// up
	resp := castVote(t, app, token, postID, 1)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, int64(1), score(t, app, postID))

	// switch to down moves the counter by two
	resp = castVote(t, app, token, postID, -1)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, int64(-1), score(t, app, postID))

	// retract
	resp = castVote(t, app, token, postID, 0)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, int64(0), score(t, app, postID))

	// the record survives retraction
	assert.Equal(t, 1, voteRecordCount(t, app, postID))
}

func TestDoubleSubmitSameDirection(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	token := createVoter(t, app, "u1")
	postID := createPost(t, app, token)

	require.Equal(t, http.StatusNoContent, castVote(t, app, token, postID, 1).StatusCode)
	require.Equal(t, http.StatusNoContent, castVote(t, app, token, postID, 1).StatusCode)

	assert.Equal(t, int64(1), score(t, app, postID))
	assert.Equal(t, 1, voteRecordCount(t, app, postID))
}

func TestTwoUsersSameVotable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	tokenA := createVoter(t, app, "u1")
	tokenB := createVoter(t, app, "u2")
	postID := createPost(t, app, tokenA)

	require.Equal(t, http.StatusNoContent, castVote(t, app, tokenA, postID, 1).StatusCode)
	require.Equal(t, http.StatusNoContent, castVote(t, app, tokenB, postID, -1).StatusCode)

	assert.Equal(t, int64(0), score(t, app, postID))
	assert.Equal(t, 2, voteRecordCount(t, app, postID))
}

func TestCommentVoting(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	token := createVoter(t, app, "u1")
	postID := createPost(t, app, token)

	key, err := domain.DecodeVotableKey(postID)
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]string{"content": "try the tour first"})
	req, err := http.NewRequest("POST", fmt.Sprintf("%s/api/posts/%s/comments", app.Server.URL, key.ID), bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		VotableID string `json:"votable_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	require.Equal(t, http.StatusNoContent, castVote(t, app, token, created.VotableID, 1).StatusCode)
	assert.Equal(t, int64(1), score(t, app, created.VotableID))
}

func TestVoteRequiresAuth(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	token := createVoter(t, app, "u1")
	postID := createPost(t, app, token)

	req, err := http.NewRequest("POST", fmt.Sprintf("%s/api/votables/%s/vote?dir=1", app.Server.URL, postID), nil)
	require.NoError(t, err)
	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVoteRejectsBadVotableID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	token := createVoter(t, app, "u1")

	resp := castVote(t, app, token, "not-a-votable-id!", 1)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVoteOnUnknownVotable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	token := createVoter(t, app, "u1")
	ghost := domain.VotableKey{Kind: domain.KindPost, ID: "never-created"}.Encode()

	resp := castVote(t, app, token, ghost, 1)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
