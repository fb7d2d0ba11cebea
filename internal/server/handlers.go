package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/papyri/archive/internal/identity"
	"github.com/papyri/archive/internal/model"
	"github.com/papyri/archive/internal/service"
)

// API is the REST surface over the lifecycle engine, the moderation worklist
// and the listing facade.
type API struct {
	docs       *service.DocumentService
	moderation *service.ModerationService
	listing    *service.ListingService
}

func NewAPI(docs *service.DocumentService, moderation *service.ModerationService, listing *service.ListingService) *API {
	return &API{
		docs:       docs,
		moderation: moderation,
		listing:    listing,
	}
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet && r.URL.Path == "/v1/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/v1/moderation/worklist" {
		a.handleWorklist(w, r)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/v1/listings" {
		a.handleListings(w, r)
		return
	}

	if r.URL.Path == "/v1/documents" {
		switch r.Method {
		case http.MethodPost:
			a.handleCreateDocument(w, r)
		case http.MethodGet:
			a.handleListDocuments(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		}
		return
	}

	// /v1/documents/{id}[/...]
	rest, ok := strings.CutPrefix(r.URL.Path, "/v1/documents/")
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such route")
		return
	}

	parts := strings.Split(rest, "/")
	id64, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "document id must be an integer")
		return
	}
	id := uint(id64)

	switch {
	case len(parts) == 1:
		a.handleDocument(w, r, id)
	case len(parts) == 2 && parts[1] == "versions":
		a.handleVersions(w, r, id)
	case len(parts) == 2 && (parts[1] == "approve" || parts[1] == "reject"):
		a.handleModerateDocument(w, r, id, parts[1])
	case len(parts) == 4 && parts[1] == "versions" && (parts[3] == "approve" || parts[3] == "reject"):
		a.handleModerateVersion(w, r, id, parts[2], parts[3])
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such route")
	}
}

func (a *API) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	in := service.CreateDocumentInput{
		OwnerID:    actor.ID,
		OwnerEmail: actor.Email,
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, name, err := parseUploadForm(r, &in.Title, &in.Type, &in.Contents, &in.Notes, &in.Tags)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		in.File, in.FileName = file, name
	} else {
		var body struct {
			Title    string   `json:"title"`
			Type     string   `json:"type"`
			Contents string   `json:"contents"`
			Tags     []string `json:"tags"`
			Notes    string   `json:"notes"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		in.Title, in.Type, in.Contents, in.Tags, in.Notes = body.Title, body.Type, body.Contents, body.Tags, body.Notes
	}

	doc, err := a.docs.CreateDocument(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (a *API) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	var docs []*model.Document
	var err error

	switch {
	case r.URL.Query().Get("owner_id") != "":
		docs, err = a.docs.ListDocumentsByOwner(r.Context(), r.URL.Query().Get("owner_id"))
	case r.URL.Query().Get("status") != "":
		docs, err = a.docs.ListDocumentsByStatus(r.Context(), model.Status(r.URL.Query().Get("status")))
	default:
		docs, err = a.docs.ListDocuments(r.Context())
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if q := r.URL.Query().Get("q"); q != "" {
		docs = service.Search(docs, q)
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": docs, "total": len(docs)})
}

func (a *API) handleDocument(w http.ResponseWriter, r *http.Request, id uint) {
	switch r.Method {
	case http.MethodGet:
		doc, err := a.docs.GetDocument(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)

	case http.MethodPut:
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		var body struct {
			Title    *string  `json:"title"`
			Type     *string  `json:"type"`
			Contents *string  `json:"contents"`
			Tags     []string `json:"tags"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		doc, err := a.docs.UpdateDocument(r.Context(), id, service.UpdateDocumentInput{
			Title:    body.Title,
			Type:     body.Type,
			Contents: body.Contents,
			Tags:     body.Tags,
			Actor:    actor.ID,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)

	case http.MethodDelete:
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		var err error
		if r.URL.Query().Get("erase") == "true" {
			err = a.docs.EraseDocument(r.Context(), id, actor.ID)
		} else {
			err = a.docs.DeleteDocument(r.Context(), id, actor.ID)
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id})

	default:
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	}
}

func (a *API) handleVersions(w http.ResponseWriter, r *http.Request, id uint) {
	switch r.Method {
	case http.MethodGet:
		versions, err := a.docs.FetchVersions(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"versions": versions, "total": len(versions)})

	case http.MethodPost:
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		in := service.NewVersionInput{Actor: actor.ID}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			var typ string
			file, name, err := parseUploadForm(r, &in.Title, &typ, &in.Contents, &in.Notes, &in.Tags)
			if err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
				return
			}
			in.File, in.FileName = file, name
		} else {
			var body struct {
				Title    string   `json:"title"`
				Contents string   `json:"contents"`
				Tags     []string `json:"tags"`
				Notes    string   `json:"notes"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
				return
			}
			in.Title, in.Contents, in.Tags, in.Notes = body.Title, body.Contents, body.Tags, body.Notes
		}

		doc, err := a.docs.CreateNewVersion(r.Context(), id, in)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, doc)

	default:
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	}
}

func (a *API) handleModerateDocument(w http.ResponseWriter, r *http.Request, id uint, action string) {
	actor, ok := requireModerator(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	var doc *model.Document
	var err error
	if action == "approve" {
		doc, err = a.docs.ApproveDocument(r.Context(), id, actor.ID)
	} else {
		doc, err = a.docs.RejectDocument(r.Context(), id, actor.ID)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (a *API) handleModerateVersion(w http.ResponseWriter, r *http.Request, id uint, rawVersion, action string) {
	actor, ok := requireModerator(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	versionNumber, err := strconv.ParseInt(rawVersion, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_VERSION", "version must be an integer")
		return
	}

	filter, ok := model.ParseFilter(r.URL.Query().Get("filter"))
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_FILTER", "unknown status filter")
		return
	}

	var items []service.WorklistItem
	if action == "approve" {
		items, err = a.moderation.ApproveVersion(r.Context(), id, versionNumber, filter, actor.ID)
	} else {
		items, err = a.moderation.RejectVersion(r.Context(), id, versionNumber, filter, actor.ID)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"worklist": items, "total": len(items)})
}

// handleListings is the "refresh all" read surface: it reloads the global
// and owner-scoped views and returns them with the approved-only filters
// applied, surfacing any recorded partial failure as a notice.
func (a *API) handleListings(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	listings := a.listing.RefreshAll(r.Context(), actor.ID)

	body := map[string]any{
		"documents":      listings.Documents,
		"owned":          listings.Owned,
		"approved":       listings.Approved,
		"approved_owned": listings.ApprovedOwned,
	}
	if err := a.listing.LastError(); err != nil {
		body["notice"] = err.Error()
		a.listing.ClearError()
	}

	writeJSON(w, http.StatusOK, body)
}

func (a *API) handleWorklist(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireModerator(w, r); !ok {
		return
	}

	filter, ok := model.ParseFilter(r.URL.Query().Get("status"))
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_FILTER", "unknown status filter")
		return
	}

	items := a.moderation.Worklist(r.Context(), filter)

	body := map[string]any{"worklist": items, "total": len(items)}
	if err := a.moderation.LastError(); err != nil {
		// partial result: surface the recorded failure as a dismissible notice
		body["notice"] = err.Error()
		a.moderation.ClearError()
	}

	writeJSON(w, http.StatusOK, body)
}

func requireActor(w http.ResponseWriter, r *http.Request) (identity.Actor, bool) {
	actor, err := identity.FromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		return identity.Actor{}, false
	}
	return actor, true
}

func requireModerator(w http.ResponseWriter, r *http.Request) (identity.Actor, bool) {
	actor, ok := requireActor(w, r)
	if !ok {
		return identity.Actor{}, false
	}
	if !actor.IsModerator() {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "moderator role required")
		return identity.Actor{}, false
	}
	return actor, true
}

// parseUploadForm reads the shared multipart fields. The file part is
// optional; payload fields left empty are inherited from the prior version
// by the engine.
func parseUploadForm(r *http.Request, title, typ, contents, notes *string, tags *[]string) (io.Reader, string, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, "", err
	}

	*title = r.FormValue("title")
	*typ = r.FormValue("type")
	*contents = r.FormValue("contents")
	*notes = r.FormValue("notes")
	if raw := r.FormValue("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				*tags = append(*tags, tag)
			}
		}
	}

	file, header, err := r.FormFile("file")
	if err == http.ErrMissingFile {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	return file, header.Filename, nil
}
