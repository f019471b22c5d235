package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/github-review-stats/internal/credential"
	"github.com/naka-gawa/github-review-stats/internal/domain"
)

// newFakeGitHub serves one organization, one repository and two pull
// requests, the second merged before June 2023.
func newFakeGitHub(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message": "Bad credentials"}`)
			return
		}
		fmt.Fprint(w, `{"login": "alice"}`)
	})
	mux.HandleFunc("GET /api/v3/orgs/ESCOMP", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login": "ESCOMP"}`)
	})
	mux.HandleFunc("GET /api/v3/orgs/nope", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})
	mux.HandleFunc("GET /api/v3/repos/ESCOMP/CAM", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name": "CAM", "owner": {"login": "ESCOMP"}}`)
	})
	mux.HandleFunc("GET /api/v3/repos/ESCOMP/CAM/pulls", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"number": 10, "merged_at": "2023-08-02T10:00:00Z"},
			{"number": 9, "merged_at": "2023-05-02T10:00:00Z"}
		]`)
	})
	mux.HandleFunc("GET /api/v3/repos/ESCOMP/CAM/pulls/10/reviews", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"user": {"login": "alice"}, "state": "APPROVED", "submitted_at": "2023-07-05T12:00:00Z"}]`)
	})
	mux.HandleFunc("GET /api/v3/repos/ESCOMP/CAM/pulls/10", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"number": 10, "additions": 1234, "deletions": 56}`)
	})
	mux.HandleFunc("POST /api/graphql", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read GraphQL request: %v", err)
			return
		}
		switch query := string(body); {
		case strings.Contains(query, "pullRequests("):
			fmt.Fprint(w, `{"data":{"repository":{"pullRequests":{
				"pageInfo":{"hasNextPage":false,"endCursor":"p1"},
				"nodes":[
					{"number":10,"merged":true,"mergedAt":"2023-08-02T10:00:00Z","additions":1234,"deletions":56,
					 "reviews":{"pageInfo":{"hasNextPage":true,"endCursor":"r1"},
					            "nodes":[{"author":{"login":"bob"},"state":"COMMENTED","submittedAt":"2023-07-04T12:00:00Z"}]}},
					{"number":9,"merged":true,"mergedAt":"2023-05-02T10:00:00Z","additions":7,"deletions":7,
					 "reviews":{"pageInfo":{"hasNextPage":false,"endCursor":""},"nodes":[]}}
				]}}}}`)
		case strings.Contains(query, "pullRequest(number: $number)"):
			fmt.Fprint(w, `{"data":{"repository":{"pullRequest":{"reviews":{
				"pageInfo":{"hasNextPage":false,"endCursor":"r2"},
				"nodes":[{"author":{"login":"alice"},"state":"APPROVED","submittedAt":"2023-07-05T12:00:00Z"}]}}}}}`)
		default:
			t.Errorf("unexpected GraphQL query: %s", query)
		}
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusTeapot)
	})
	return httptest.NewServer(mux)
}

func executeStats(t *testing.T, token string, args ...string) (string, string, error) {
	server := newFakeGitHub(t)
	t.Cleanup(server.Close)
	t.Setenv("GITHUB_REVIEW_STATS_REST_BASE_URL", server.URL+"/")
	t.Setenv("GITHUB_REVIEW_STATS_GRAPHQL_URL", server.URL+"/api/graphql")
	t.Setenv("GITHUB_REVIEW_STATS_MAX_RETRIES", "0")

	original := newCredentialProvider
	newCredentialProvider = func() credential.Provider { return credential.Static(token) }
	t.Cleanup(func() { newCredentialProvider = original })

	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"stats"}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestStatsCmd(t *testing.T) {
	// Keep godotenv from picking up a stray .env.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Run("happy path - prints the summary", func(t *testing.T) {
		stdout, stderr, err := executeStats(t, "good-token", "-r", "ESCOMP/CAM", "-s", "202306")

		require.NoError(t, err)
		assert.Equal(t, "\nTotal number of PRs reviewed = 1\n"+
			"\nTotal number of lines with text added = 1,234\n"+
			"\nTotal number of lines with text removed = 56\n"+
			"\nMaximum number of additions for single PR = 1,234\n"+
			"Maximum additions PR number = 10\n", stdout)
		assert.Contains(t, stderr, "On PR number 10")
		assert.NotContains(t, stderr, "On PR number 9")
	})

	t.Run("happy path - graphql backend", func(t *testing.T) {
		stdout, stderr, err := executeStats(t, "good-token", "--api", "graphql", "-r", "ESCOMP/CAM", "-s", "202306")

		require.NoError(t, err)
		assert.Contains(t, stdout, "Total number of PRs reviewed = 1\n")
		assert.Contains(t, stdout, "Total number of lines with text added = 1,234\n")
		assert.Contains(t, stdout, "Maximum additions PR number = 10\n")
		assert.Contains(t, stderr, "On PR number 10")
		assert.NotContains(t, stderr, "On PR number 9")
	})

	t.Run("quiet json output for another reviewer", func(t *testing.T) {
		stdout, stderr, err := executeStats(t, "good-token", "-q", "-r", "ESCOMP/CAM", "-s", "202306", "-u", "bob", "-o", "json")

		require.NoError(t, err)
		assert.Empty(t, stderr)
		assert.Contains(t, stdout, `"reviewer": "bob"`)
		assert.Contains(t, stdout, `"reviewed_prs": 0`)
	})

	t.Run("error case - malformed repository", func(t *testing.T) {
		_, _, err := executeStats(t, "good-token", "-r", "ESCOMP-CAM", "-s", "202306")
		assert.ErrorIs(t, err, domain.ErrInput)
	})

	t.Run("error case - bad token", func(t *testing.T) {
		_, _, err := executeStats(t, "expired", "-r", "ESCOMP/CAM", "-s", "202306")
		assert.ErrorIs(t, err, domain.ErrAuthentication)
	})

	t.Run("error case - unknown organization", func(t *testing.T) {
		_, _, err := executeStats(t, "good-token", "-r", "nope/CAM", "-s", "202306")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("error case - missing required flag", func(t *testing.T) {
		_, _, err := executeStats(t, "good-token", "-r", "ESCOMP/CAM")
		assert.ErrorContains(t, err, `required flag(s) "start-date" not set`)
	})

	t.Run("error case - invalid timezone flag", func(t *testing.T) {
		_, _, err := executeStats(t, "good-token", "-r", "ESCOMP/CAM", "-s", "202306", "--timezone", "Nowhere/Special")
		assert.ErrorContains(t, err, "invalid timezone")
	})
}
