package handlers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

type upload struct {
	field, name string
	content     []byte
}

func formRequest(t *testing.T, path string, fields map[string]string, file *upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		part, err := mw.CreateFormFile(file.field, file.name)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func receipt() *upload {
	return &upload{field: "receipt", name: "receipt.png", content: pngBytes}
}

func storedFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

//
// --- Deposits ---
//

func TestCreateDepositStoresReceipt(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectExec("INSERT INTO wallet_deposits").
		WithArgs(sqlmock.AnyArg(), int64(7), testAddress, sqlmock.AnyArg(), "ethereum", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(5, 1))

	req := formRequest(t, "/d", map[string]string{"amount": "1.5", "ethAddress": testAddress}, receipt())
	w := serveRequest(req, "/d", 7, models.RoleUser, f.h.CreateDeposit)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := decode(t, w)
	deposit := got["deposit"].(map[string]any)
	assert.Equal(t, float64(5), deposit["id"])
	assert.Equal(t, "1.5", deposit["amount"])
	assert.Equal(t, "Pending", deposit["status"])
	assert.True(t, strings.HasPrefix(got["receiptUrl"].(string), "http://localhost:8080/uploads/"))
	assert.Equal(t, 1, storedFiles(t, f.dir))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateDepositValidation(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		file   *upload
	}{
		{"missing receipt", map[string]string{"amount": "1", "ethAddress": testAddress}, nil},
		{"below minimum", map[string]string{"amount": "0.0009", "ethAddress": testAddress}, receipt()},
		{"five decimals", map[string]string{"amount": "1.00005", "ethAddress": testAddress}, receipt()},
		{"bad address", map[string]string{"amount": "1", "ethAddress": "0x123"}, receipt()},
		{"pdf receipt", map[string]string{"amount": "1", "ethAddress": testAddress},
			&upload{field: "receipt", name: "receipt.pdf", content: []byte("%PDF-1.4")}},
		{"text named png", map[string]string{"amount": "1", "ethAddress": testAddress},
			&upload{field: "receipt", name: "receipt.png", content: []byte("just some text")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := formRequest(t, "/d", tt.fields, tt.file)
			w := serveRequest(req, "/d", 7, models.RoleUser, f.h.CreateDeposit)

			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Zero(t, storedFiles(t, f.dir))
			assert.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}

func TestCreateDepositRemovesReceiptWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectExec("INSERT INTO wallet_deposits").WillReturnError(errors.New("connection reset"))

	req := formRequest(t, "/d", map[string]string{"amount": "1", "ethAddress": testAddress}, receipt())
	w := serveRequest(req, "/d", 7, models.RoleUser, f.h.CreateDeposit)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Zero(t, storedFiles(t, f.dir))
}

func TestCreateDepositInsertIDFailure(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectExec("INSERT INTO wallet_deposits").
		WillReturnResult(sqlmock.NewErrorResult(errors.New("no insert id")))

	req := formRequest(t, "/d", map[string]string{"amount": "1", "ethAddress": testAddress}, receipt())
	w := serveRequest(req, "/d", 7, models.RoleUser, f.h.CreateDeposit)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// the row exists, so its receipt is kept
	assert.Equal(t, 1, storedFiles(t, f.dir))
}

func TestCreateGasDeposit(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectExec("INSERT INTO gas_fee_deposits").
		WithArgs(sqlmock.AnyArg(), int64(7), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(6, 1))

	req := formRequest(t, "/g", map[string]string{"amount": "0.25"}, receipt())
	w := serveRequest(req, "/g", 7, models.RoleUser, f.h.CreateGasDeposit)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	deposit := decode(t, w)["deposit"].(map[string]any)
	assert.Equal(t, float64(6), deposit["id"])
	assert.Equal(t, "0.25", deposit["amount"])
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateGasDepositRejectsExtraPrecision(t *testing.T) {
	f := newFixture(t)
	req := formRequest(t, "/g", map[string]string{"amount": "0.12345"}, receipt())
	w := serveRequest(req, "/g", 7, models.RoleUser, f.h.CreateGasDeposit)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, storedFiles(t, f.dir))
}

//
// --- Purchases ---
//

func expectPurchaseListing(mock sqlmock.Sqlmock, owner int64, status models.ListingStatus) {
	mock.ExpectQuery("FROM listings l").
		WithArgs(int64(7), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"ref_number", "owner_id", "name", "price", "status", "name"}).
			AddRow("ref-3", owner, "Owner", "1.5000", string(status), "Buyer"))
}

func purchaseRequest(t *testing.T) *http.Request {
	return formRequest(t, "/p", map[string]string{"listingId": "3", "ethAddress": testAddress}, receipt())
}

func TestCreatePurchase(t *testing.T) {
	f := newFixture(t)
	expectPurchaseListing(f.mock, 9, models.ListingAvailable)
	f.mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(7), int64(3), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	f.mock.ExpectExec("INSERT INTO transactions").
		WillReturnResult(sqlmock.NewResult(15, 1))

	w := serveRequest(purchaseRequest(t), "/p", 7, models.RoleUser, f.h.CreatePurchase)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tx := decode(t, w)["transaction"].(map[string]any)
	assert.Equal(t, float64(15), tx["id"])
	assert.Equal(t, "1.5", tx["listedPrice"])
	assert.Equal(t, float64(9), tx["ownerId"])
	assert.Equal(t, "Buyer", tx["buyerName"])
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreatePurchaseRules(t *testing.T) {
	tests := []struct {
		name   string
		owner  int64
		status models.ListingStatus
		want   int
	}{
		{"own listing", 7, models.ListingAvailable, http.StatusBadRequest},
		{"sold", 9, models.ListingSold, http.StatusConflict},
		{"pending mint", 9, models.ListingPending, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			expectPurchaseListing(f.mock, tt.owner, tt.status)

			w := serveRequest(purchaseRequest(t), "/p", 7, models.RoleUser, f.h.CreatePurchase)

			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Zero(t, storedFiles(t, f.dir))
			assert.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}

func TestCreatePurchaseAlreadyPending(t *testing.T) {
	f := newFixture(t)
	expectPurchaseListing(f.mock, 9, models.ListingListed)
	f.mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	w := serveRequest(purchaseRequest(t), "/p", 7, models.RoleUser, f.h.CreatePurchase)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode(t, w)["error"], "already awaiting approval")
	assert.Zero(t, storedFiles(t, f.dir))
}

func TestCreatePurchaseMissingListing(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery("FROM listings l").
		WillReturnRows(sqlmock.NewRows([]string{"ref_number"}))

	w := serveRequest(purchaseRequest(t), "/p", 7, models.RoleUser, f.h.CreatePurchase)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

//
// --- Mint Requests ---
//

func mintRequest(t *testing.T, fields map[string]string) *http.Request {
	base := map[string]string{"name": "Lunar Ape", "category": "art", "price": "0.75"}
	for k, v := range fields {
		base[k] = v
	}
	return formRequest(t, "/m", base, &upload{field: "image", name: "ape.png", content: pngBytes})
}

func TestCreateMintRequest(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery("SELECT id FROM categories WHERE name = ?").
		WithArgs("art").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	f.mock.ExpectQuery("SELECT name FROM users WHERE id = ?").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Ada"))
	f.mock.ExpectExec("INSERT INTO mint_requests").
		WillReturnResult(sqlmock.NewResult(21, 1))

	w := serveRequest(mintRequest(t, map[string]string{"royalties": "2.5"}), "/m", 7, models.RoleUser, f.h.CreateMintRequest)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	m := decode(t, w)["mintRequest"].(map[string]any)
	assert.Equal(t, float64(21), m["id"])
	assert.Equal(t, "Ada", m["creator"])
	assert.Equal(t, "Pending", m["status"])
	assert.Equal(t, "2.5", m["royalties"])
	assert.Equal(t, 1, storedFiles(t, f.dir))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateMintRequestUnknownCategory(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery("SELECT id FROM categories WHERE name = ?").
		WithArgs("art").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := serveRequest(mintRequest(t, nil), "/m", 7, models.RoleUser, f.h.CreateMintRequest)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, storedFiles(t, f.dir))
}

func TestCreateMintRequestValidation(t *testing.T) {
	for name, fields := range map[string]map[string]string{
		"zero price":            {"price": "0"},
		"price too precise":     {"price": "0.12345"},
		"royalties too high":    {"royalties": "51"},
		"royalties too precise": {"royalties": "2.555"},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			w := serveRequest(mintRequest(t, fields), "/m", 7, models.RoleUser, f.h.CreateMintRequest)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}

//
// --- Offers ---
//

func TestCreateOfferRejectsExtraPrecision(t *testing.T) {
	f := newFixture(t)
	w := serve(http.MethodPost, "/v1/offers", "/v1/offers", `{"listingId":3,"offeredPrice":"1.49005"}`, 7, models.RoleUser, f.h.CreateOffer)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
