package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/papyri/archive/internal/identity"
	"github.com/papyri/archive/internal/model"
	"github.com/papyri/archive/internal/queue"
	"github.com/papyri/archive/internal/service"
	"github.com/papyri/archive/internal/store"
	"github.com/papyri/archive/internal/tester"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tester.RemoveDBFile()
	tester.Setup()

	docStore := store.NewGormStore(tester.TestDB())
	docs := service.NewDocumentService(docStore, tester.Blobs(), tester.Cache(), queue.NewNoop())
	moderation := service.NewModerationService(docStore, docs)
	listing := service.NewListingService(docs)

	api := NewAPI(docs, moderation, listing)
	server := httptest.NewServer(authMiddleware(testSecret, api))
	t.Cleanup(server.Close)

	return server
}

func signed(t *testing.T, actor identity.Actor) string {
	t.Helper()

	token, err := identity.SignToken(testSecret, actor)
	assert.NoError(t, err)
	return token
}

func request(t *testing.T, server *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	assert.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	return res
}

func decode(t *testing.T, res *http.Response, out any) {
	t.Helper()

	defer res.Body.Close()
	assert.NoError(t, json.NewDecoder(res.Body).Decode(out))
}

func TestAPI_Health(t *testing.T) {
	server := newTestServer(t)

	res := request(t, server, http.MethodGet, "/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var body map[string]any
	decode(t, res, &body)
	assert.Equal(t, true, body["ok"])
}

func TestAPI_CreateDocument(t *testing.T) {
	server := newTestServer(t)
	owner := signed(t, identity.Actor{ID: "owner-1", Email: "owner@example.com"})

	res := request(t, server, http.MethodPost, "/v1/documents", owner, map[string]any{
		"title":    "harbor ledger",
		"type":     "ledger",
		"contents": "arrivals and departures",
	})
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	var doc model.Document
	decode(t, res, &doc)
	assert.NotZero(t, doc.ID)
	assert.Equal(t, "owner-1", doc.OwnerID)
	assert.Equal(t, model.StatusPending, doc.Status)
	assert.Equal(t, int64(1), doc.CurrentVersion)
}

func TestAPI_CreateDocument_Unauthenticated(t *testing.T) {
	server := newTestServer(t)

	res := request(t, server, http.MethodPost, "/v1/documents", "", map[string]any{
		"title": "anonymous scroll",
		"type":  "scroll",
	})
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res = request(t, server, http.MethodPost, "/v1/documents", "garbage-token", nil)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestAPI_CreateDocument_Validation(t *testing.T) {
	server := newTestServer(t)
	owner := signed(t, identity.Actor{ID: "owner-1"})

	res := request(t, server, http.MethodPost, "/v1/documents", owner, map[string]any{
		"contents": "no title, no type",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, res, &body)
	assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
}

func TestAPI_GetDocument_NotFound(t *testing.T) {
	server := newTestServer(t)

	res := request(t, server, http.MethodGet, "/v1/documents/9999", "", nil)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res = request(t, server, http.MethodGet, "/v1/documents/not-a-number", "", nil)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestAPI_ModerationFlow(t *testing.T) {
	server := newTestServer(t)
	owner := signed(t, identity.Actor{ID: "owner-1"})
	moderator := signed(t, identity.Actor{ID: "mod-1", Role: identity.RoleModerator})

	res := request(t, server, http.MethodPost, "/v1/documents", owner, map[string]any{
		"title": "treaty",
		"type":  "treaty",
	})
	var doc model.Document
	decode(t, res, &doc)

	// owners cannot moderate
	res = request(t, server, http.MethodGet, "/v1/moderation/worklist", owner, nil)
	res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res = request(t, server, http.MethodGet, "/v1/moderation/worklist?status=pending", moderator, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var worklist struct {
		Worklist []service.WorklistItem `json:"worklist"`
		Total    int                    `json:"total"`
	}
	decode(t, res, &worklist)
	assert.Equal(t, 1, worklist.Total)
	assert.Equal(t, doc.ID, worklist.Worklist[0].DocumentID)

	res = request(t, server, http.MethodPost, "/v1/documents/1/versions/1/approve?filter=pending", moderator, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	decode(t, res, &worklist)
	assert.Equal(t, 0, worklist.Total)

	res = request(t, server, http.MethodGet, "/v1/documents/1", "", nil)
	decode(t, res, &doc)
	assert.Equal(t, model.StatusApproved, doc.Status)
}

func TestAPI_NewVersionAndListings(t *testing.T) {
	server := newTestServer(t)
	owner := signed(t, identity.Actor{ID: "owner-1"})
	moderator := signed(t, identity.Actor{ID: "mod-1", Role: identity.RoleModerator})

	res := request(t, server, http.MethodPost, "/v1/documents", owner, map[string]any{
		"title": "almanac",
		"type":  "almanac",
	})
	var doc model.Document
	decode(t, res, &doc)

	res = request(t, server, http.MethodPost, "/v1/documents/1/versions", owner, map[string]any{
		"contents": "revised tables",
	})
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	decode(t, res, &doc)
	assert.Equal(t, int64(2), doc.CurrentVersion)

	res = request(t, server, http.MethodPost, "/v1/documents/1/versions/2/approve", moderator, nil)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res = request(t, server, http.MethodGet, "/v1/listings", owner, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var listings struct {
		Documents     []*model.Document `json:"documents"`
		Owned         []*model.Document `json:"owned"`
		Approved      []*model.Document `json:"approved"`
		ApprovedOwned []*model.Document `json:"approved_owned"`
	}
	decode(t, res, &listings)
	assert.Len(t, listings.Documents, 1)
	assert.Len(t, listings.Owned, 1)
	assert.Len(t, listings.Approved, 1)
	assert.Len(t, listings.ApprovedOwned, 1)
}

func TestAPI_ListDocuments_Search(t *testing.T) {
	server := newTestServer(t)
	owner := signed(t, identity.Actor{ID: "owner-1"})

	for _, title := range []string{"harbor ledger", "temple accounts"} {
		res := request(t, server, http.MethodPost, "/v1/documents", owner, map[string]any{
			"title": title,
			"type":  "ledger",
		})
		res.Body.Close()
		assert.Equal(t, http.StatusCreated, res.StatusCode)
	}

	res := request(t, server, http.MethodGet, "/v1/documents?q=harbor", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Documents []*model.Document `json:"documents"`
		Total     int               `json:"total"`
	}
	decode(t, res, &body)
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, "harbor ledger", body.Documents[0].Title)
}
