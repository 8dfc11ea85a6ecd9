package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librakeep/librakeep/pkg/books"
	"github.com/librakeep/librakeep/pkg/borrows"
	"github.com/librakeep/librakeep/pkg/config"
	"github.com/librakeep/librakeep/pkg/logger"
	"github.com/librakeep/librakeep/pkg/members"
	"github.com/librakeep/librakeep/pkg/store"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.Auth.JWTSecret = "test-secret-at-least-16-chars"
	cfg.Database.Path = filepath.Join(t.TempDir(), "api.db")

	s, err := store.Open(cfg.Database)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(&members.Member{}, &books.Book{}, &borrows.Borrow{}))
	t.Cleanup(func() { _ = s.Close() })

	log := logger.NewTestLogger()
	memberRepo := members.NewRepository(s.DB())
	auth := members.NewAuthService(memberRepo, cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	bookSvc := books.NewService(s, books.NewRepository(s.DB()), log)
	borrowSvc := borrows.NewService(s, borrows.NewRepository(s.DB()), memberRepo, cfg.Lending, log)

	return NewServer(cfg, log, s, auth, members.NewManager(memberRepo), bookSvc, borrowSvc)
}

// doJSON performs a request against the router and decodes the response body
// into out (when non-nil)
func doJSON(t *testing.T, srv *Server, method, path, token string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if out != nil && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w
}

func registerToken(t *testing.T, srv *Server, email, role string) string {
	t.Helper()

	var resp AuthResponse
	w := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name: "Test Member", Email: email, Password: "secret1", Role: role,
	}, &resp)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotNil(t, resp.Data)
	return resp.Data.Token
}

func createBook(t *testing.T, srv *Server, admin, isbn string, total int) string {
	t.Helper()

	var resp BookResponse
	w := doJSON(t, srv, http.MethodPost, "/api/books", admin, BookCreateRequest{
		Title: "Dune", Author: "Frank Herbert", ISBN: isbn,
		Category: "FICTION", TotalCopies: total,
	}, &resp)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return resp.Data.ID
}

func TestHealth(t *testing.T) {
	srv := setupTestServer(t)

	var resp HealthResponse
	w := doJSON(t, srv, http.MethodGet, "/health", "", nil, &resp)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", resp.Status)
}

func TestAuthFlow(t *testing.T) {
	srv := setupTestServer(t)

	token := registerToken(t, srv, "ada@example.com", "")

	// Duplicate email is rejected with a conflict.
	w := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name: "Ada Again", Email: "ada@example.com", Password: "secret1",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Login with the registered credentials.
	var login AuthResponse
	w = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "ada@example.com", Password: "secret1",
	}, &login)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, login.Data.Token)

	// Wrong password gives 401 without leaking which part was wrong.
	w = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "ada@example.com", Password: "wrong-pass",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// /me resolves the token back to the member, without the password hash.
	var me MemberResponse
	w = doJSON(t, srv, http.MethodGet, "/api/auth/me", token, nil, &me)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ada@example.com", me.Data.Email)
	assert.Empty(t, me.Data.Password)

	// No token, garbage token.
	w = doJSON(t, srv, http.MethodGet, "/api/auth/me", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(t, srv, http.MethodGet, "/api/auth/me", "not-a-jwt", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookEndpoints(t *testing.T) {
	srv := setupTestServer(t)
	admin := registerToken(t, srv, "librarian@example.com", "ADMIN")
	member := registerToken(t, srv, "ada@example.com", "")

	bookID := createBook(t, srv, admin, "isbn-1", 2)

	// Catalog reads are public.
	var list BookListResponse
	w := doJSON(t, srv, http.MethodGet, "/api/books", "", nil, &list)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, list.Data, 1)

	var got BookResponse
	w = doJSON(t, srv, http.MethodGet, "/api/books/"+bookID, "", nil, &got)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Dune", got.Data.Title)

	w = doJSON(t, srv, http.MethodGet, "/api/books/missing", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Writes are librarian-only.
	w = doJSON(t, srv, http.MethodPost, "/api/books", member, BookCreateRequest{
		Title: "X", Author: "Y", ISBN: "isbn-2", Category: "FICTION", TotalCopies: 1,
	}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	title := "Dune Messiah"
	var updated BookResponse
	w = doJSON(t, srv, http.MethodPut, "/api/books/"+bookID, admin, BookUpdateRequest{Title: &title}, &updated)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Dune Messiah", updated.Data.Title)

	w = doJSON(t, srv, http.MethodDelete, "/api/books/"+bookID, admin, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, srv, http.MethodGet, "/api/books/"+bookID, "", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookList_Filters(t *testing.T) {
	srv := setupTestServer(t)
	admin := registerToken(t, srv, "librarian@example.com", "ADMIN")

	for i := 0; i < 12; i++ {
		createBook(t, srv, admin, fmt.Sprintf("isbn-%d", i), 1)
	}

	var list BookListResponse
	w := doJSON(t, srv, http.MethodGet, "/api/books?page=2&limit=10", "", nil, &list)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, list.Data, 2)
	assert.Equal(t, int64(12), list.Pagination.Total)
	assert.Equal(t, 2, list.Pagination.Page)

	w = doJSON(t, srv, http.MethodGet, "/api/books?search=dune&category=FICTION", "", nil, &list)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, list.Data, 10)
}

func TestBorrowEndpoints(t *testing.T) {
	srv := setupTestServer(t)
	admin := registerToken(t, srv, "librarian@example.com", "ADMIN")
	ada := registerToken(t, srv, "ada@example.com", "")
	grace := registerToken(t, srv, "grace@example.com", "")

	bookID := createBook(t, srv, admin, "isbn-1", 1)

	// Ada takes the only copy.
	var borrowed BorrowResponse
	w := doJSON(t, srv, http.MethodPost, "/api/borrows", ada, BorrowRequest{BookID: bookID}, &borrowed)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, borrows.StatusActive, borrowed.Data.Status)

	// Grace is turned away.
	var errResp ErrorResponse
	w = doJSON(t, srv, http.MethodPost, "/api/borrows", grace, BorrowRequest{BookID: bookID}, &errResp)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNAVAILABLE", errResp.ErrorCode)

	// Grace cannot return Ada's loan.
	w = doJSON(t, srv, http.MethodPost, "/api/borrows/"+borrowed.Data.ID+"/return", grace, nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Ada sees it under /my.
	var mine BorrowListResponse
	w = doJSON(t, srv, http.MethodGet, "/api/borrows/my", ada, nil, &mine)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, mine.Data, 1)

	// Admin listing requires the role.
	w = doJSON(t, srv, http.MethodGet, "/api/borrows", ada, nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	var all BorrowListResponse
	w = doJSON(t, srv, http.MethodGet, "/api/borrows", admin, nil, &all)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, all.Data, 1)

	// Ada returns it; the copy frees up and Grace can borrow.
	var returned BorrowResponse
	w = doJSON(t, srv, http.MethodPost, "/api/borrows/"+borrowed.Data.ID+"/return", ada, nil, &returned)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, borrows.StatusReturned, returned.Data.Status)
	assert.Equal(t, int64(0), returned.Data.Fine)

	w = doJSON(t, srv, http.MethodPost, "/api/borrows/"+borrowed.Data.ID+"/return", ada, nil, &errResp)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ALREADY_RETURNED", errResp.ErrorCode)

	w = doJSON(t, srv, http.MethodPost, "/api/borrows", grace, BorrowRequest{BookID: bookID}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestBorrowOnBehalf(t *testing.T) {
	srv := setupTestServer(t)
	admin := registerToken(t, srv, "librarian@example.com", "ADMIN")
	ada := registerToken(t, srv, "ada@example.com", "")

	var me MemberResponse
	w := doJSON(t, srv, http.MethodGet, "/api/auth/me", ada, nil, &me)
	require.Equal(t, http.StatusOK, w.Code)

	bookID := createBook(t, srv, admin, "isbn-1", 1)

	// A librarian can lend to a named member.
	var borrowed BorrowResponse
	w = doJSON(t, srv, http.MethodPost, "/api/borrows", admin, BorrowRequest{
		BookID: bookID, MemberID: me.Data.ID,
	}, &borrowed)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, me.Data.ID, borrowed.Data.MemberID)

	// A regular member cannot.
	w = doJSON(t, srv, http.MethodPost, "/api/borrows", ada, BorrowRequest{
		BookID: bookID, MemberID: "someone-else",
	}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOverdueAndSweepEndpoints(t *testing.T) {
	srv := setupTestServer(t)
	admin := registerToken(t, srv, "librarian@example.com", "ADMIN")
	ada := registerToken(t, srv, "ada@example.com", "")

	// Nothing overdue on a fresh system; the endpoints still answer.
	var overdue BorrowListResponse
	w := doJSON(t, srv, http.MethodGet, "/api/borrows/overdue", admin, nil, &overdue)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, overdue.Data)

	var sweep Response[SweepResponse]
	w = doJSON(t, srv, http.MethodPost, "/api/borrows/sweep", admin, nil, &sweep)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, sweep.Data.Updated)

	// Both are librarian-only.
	w = doJSON(t, srv, http.MethodGet, "/api/borrows/overdue", ada, nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(t, srv, http.MethodPost, "/api/borrows/sweep", ada, nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMemberEndpoints(t *testing.T) {
	srv := setupTestServer(t)
	admin := registerToken(t, srv, "librarian@example.com", "ADMIN")
	ada := registerToken(t, srv, "ada@example.com", "")

	var me MemberResponse
	w := doJSON(t, srv, http.MethodGet, "/api/auth/me", ada, nil, &me)
	require.Equal(t, http.StatusOK, w.Code)
	adaID := me.Data.ID

	// Member administration is librarian-only.
	w = doJSON(t, srv, http.MethodGet, "/api/members", ada, nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var list MemberListResponse
	w = doJSON(t, srv, http.MethodGet, "/api/members", admin, nil, &list)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, list.Data, 2)

	// Promote Ada to librarian.
	role := "ADMIN"
	var updated MemberResponse
	w = doJSON(t, srv, http.MethodPut, "/api/members/"+adaID, admin, MemberUpdateRequest{Role: &role}, &updated)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, members.RoleAdmin, updated.Data.Role)

	// Empty patch is rejected.
	w = doJSON(t, srv, http.MethodPut, "/api/members/"+adaID, admin, MemberUpdateRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodDelete, "/api/members/"+adaID, admin, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, srv, http.MethodGet, "/api/members/"+adaID, admin, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
