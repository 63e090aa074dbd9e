package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nvaghela/dukaan-backend/internal/app/model"
	"github.com/nvaghela/dukaan-backend/internal/app/repository"
	"github.com/nvaghela/dukaan-backend/internal/app/service"
	"github.com/nvaghela/dukaan-backend/internal/db"
	"github.com/nvaghela/dukaan-backend/internal/storage"
)

func setupReviewControllerTest(t *testing.T) (*ReviewController, *gin.Engine, *gorm.DB, *model.User, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	kycRepo := repository.NewKYCRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	reviewService := service.NewReviewService(testDB, kycRepo, userRepo, nil, nil)
	uploadService := service.NewUploadService(kycRepo, storage.NewMemoryStorage(), nil)
	controller := NewReviewController(reviewService, uploadService, 30*time.Second)

	admin := &model.User{
		Email:        "admin@example.com",
		PasswordHash: "hash",
		Name:         "Test Admin",
		Role:         model.RoleAdmin,
	}
	testDB.Create(admin)

	seller := &model.User{
		Email:        "seller@example.com",
		PasswordHash: "hash",
		Name:         "Test Seller",
		Role:         model.RoleSeller,
	}
	testDB.Create(seller)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return controller, router, testDB, admin, seller
}

// seedReviewableSubmission creates an under_review submission with the given
// document slots attached.
func seedReviewableSubmission(t *testing.T, testDB *gorm.DB, sellerID uint, slots ...model.DocumentSlot) *model.KYCSubmission {
	t.Helper()

	sub := &model.KYCSubmission{
		UserID:        sellerID,
		CompanyName:   "Sharma Traders",
		State:         "Maharashtra",
		City:          "Pune",
		PINCode:       "411001",
		MobileNumber:  "9876543210",
		PANNumber:     "ABCDE1234F",
		AadhaarNumber: "234567890123",
		Status:        model.StatusUnderReview,
		Version:       1,
	}
	require.NoError(t, testDB.Create(sub).Error)

	for _, slot := range slots {
		doc := &model.KYCDocument{
			SubmissionID: sub.ID,
			Slot:         slot,
			StorageKey:   fmt.Sprintf("kyc/%d/%s/test.pdf", sub.ID, slot),
			FileName:     string(slot) + ".pdf",
			ContentType:  "application/pdf",
			SizeBytes:    1024,
			UploadedBy:   sellerID,
		}
		require.NoError(t, testDB.Create(doc).Error)
	}

	var loaded model.KYCSubmission
	require.NoError(t, testDB.Preload("Documents").First(&loaded, sub.ID).Error)
	return &loaded
}

func decisionBody(t *testing.T, version uint, note string) *bytes.Reader {
	t.Helper()
	payload, err := json.Marshal(DecisionRequest{Version: version, Note: note})
	require.NoError(t, err)
	return bytes.NewReader(payload)
}

func TestReviewController_ListSubmissions(t *testing.T) {
	controller, router, testDB, admin, seller := setupReviewControllerTest(t)
	seedReviewableSubmission(t, testDB, seller.ID,
		model.SlotPAN, model.SlotAadhaar, model.SlotBank, model.SlotAddressProof)

	router.GET("/admin/kyc/submissions", func(c *gin.Context) {
		setUserIDInContext(c, admin.ID)
		controller.ListSubmissions(c)
	})

	t.Run("All submissions", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/kyc/submissions", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, float64(1), response["count"])
	})

	t.Run("Filtered by status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/kyc/submissions?status=rejected", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, float64(0), response["count"])
	})

	t.Run("Unknown status filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/kyc/submissions?status=bogus", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReviewController_Approve(t *testing.T) {
	controller, router, testDB, admin, seller := setupReviewControllerTest(t)
	sub := seedReviewableSubmission(t, testDB, seller.ID,
		model.SlotPAN, model.SlotAadhaar, model.SlotBank, model.SlotAddressProof)

	router.POST("/admin/kyc/submissions/:id/approve", func(c *gin.Context) {
		setUserIDInContext(c, admin.ID)
		controller.Approve(c)
	})

	url := fmt.Sprintf("/admin/kyc/submissions/%d/approve", sub.ID)
	req := httptest.NewRequest(http.MethodPost, url, decisionBody(t, sub.Version, "All documents check out"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	approved := response["submission"].(map[string]interface{})
	assert.Equal(t, "verified", approved["status"])
	assert.Equal(t, true, approved["is_verified"])

	var updatedSeller model.User
	require.NoError(t, testDB.First(&updatedSeller, seller.ID).Error)
	assert.True(t, updatedSeller.KYCVerified)
}

func TestReviewController_Approve_Incomplete(t *testing.T) {
	controller, router, testDB, admin, seller := setupReviewControllerTest(t)
	sub := seedReviewableSubmission(t, testDB, seller.ID,
		model.SlotPAN, model.SlotAadhaar, model.SlotBank) // address_proof missing

	router.POST("/admin/kyc/submissions/:id/approve", func(c *gin.Context) {
		setUserIDInContext(c, admin.ID)
		controller.Approve(c)
	})

	url := fmt.Sprintf("/admin/kyc/submissions/%d/approve", sub.ID)
	req := httptest.NewRequest(http.MethodPost, url, decisionBody(t, sub.Version, ""))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "KYC_INCOMPLETE_SUBMISSION", response["error"])
	missing := response["missing"].([]interface{})
	require.Len(t, missing, 1)
	assert.Equal(t, "address_proof", missing[0])
}

func TestReviewController_Approve_StaleVersion(t *testing.T) {
	controller, router, testDB, admin, seller := setupReviewControllerTest(t)
	sub := seedReviewableSubmission(t, testDB, seller.ID,
		model.SlotPAN, model.SlotAadhaar, model.SlotBank, model.SlotAddressProof)

	// The submission moved on after the admin loaded it
	require.NoError(t, testDB.Model(&model.KYCSubmission{}).
		Where("id = ?", sub.ID).
		Update("version", sub.Version+1).Error)

	router.POST("/admin/kyc/submissions/:id/approve", func(c *gin.Context) {
		setUserIDInContext(c, admin.ID)
		controller.Approve(c)
	})

	url := fmt.Sprintf("/admin/kyc/submissions/%d/approve", sub.ID)
	req := httptest.NewRequest(http.MethodPost, url, decisionBody(t, sub.Version, ""))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "KYC_CONCURRENT_UPDATE")

	var unchanged model.KYCSubmission
	require.NoError(t, testDB.First(&unchanged, sub.ID).Error)
	assert.Equal(t, model.StatusUnderReview, unchanged.Status)
	assert.False(t, unchanged.IsVerified)
}

func TestReviewController_Approve_NotFound(t *testing.T) {
	controller, router, _, admin, _ := setupReviewControllerTest(t)

	router.POST("/admin/kyc/submissions/:id/approve", func(c *gin.Context) {
		setUserIDInContext(c, admin.ID)
		controller.Approve(c)
	})

	req := httptest.NewRequest(http.MethodPost, "/admin/kyc/submissions/9999/approve", decisionBody(t, 0, ""))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "KYC_SUBMISSION_NOT_FOUND")
}

func TestReviewController_Reject(t *testing.T) {
	controller, router, testDB, admin, seller := setupReviewControllerTest(t)
	sub := seedReviewableSubmission(t, testDB, seller.ID,
		model.SlotPAN, model.SlotAadhaar, model.SlotBank, model.SlotAddressProof)

	router.POST("/admin/kyc/submissions/:id/reject", func(c *gin.Context) {
		setUserIDInContext(c, admin.ID)
		controller.Reject(c)
	})

	t.Run("Note required", func(t *testing.T) {
		url := fmt.Sprintf("/admin/kyc/submissions/%d/reject", sub.ID)
		req := httptest.NewRequest(http.MethodPost, url, decisionBody(t, sub.Version, "   "))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_REQUIRED")
	})

	t.Run("Valid rejection", func(t *testing.T) {
		url := fmt.Sprintf("/admin/kyc/submissions/%d/reject", sub.ID)
		req := httptest.NewRequest(http.MethodPost, url, decisionBody(t, sub.Version, "PAN scan is unreadable"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		rejected := response["submission"].(map[string]interface{})
		assert.Equal(t, "rejected", rejected["status"])
	})

	t.Run("Already rejected", func(t *testing.T) {
		url := fmt.Sprintf("/admin/kyc/submissions/%d/reject", sub.ID)
		req := httptest.NewRequest(http.MethodPost, url, decisionBody(t, 0, "Trying again"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestReviewController_GetHistory(t *testing.T) {
	controller, router, testDB, admin, seller := setupReviewControllerTest(t)
	sub := seedReviewableSubmission(t, testDB, seller.ID,
		model.SlotPAN, model.SlotAadhaar, model.SlotBank, model.SlotAddressProof)

	router.POST("/admin/kyc/submissions/:id/reject", func(c *gin.Context) {
		setUserIDInContext(c, admin.ID)
		controller.Reject(c)
	})
	router.GET("/admin/kyc/submissions/:id/history", func(c *gin.Context) {
		setUserIDInContext(c, admin.ID)
		controller.GetHistory(c)
	})

	url := fmt.Sprintf("/admin/kyc/submissions/%d/reject", sub.ID)
	req := httptest.NewRequest(http.MethodPost, url, decisionBody(t, sub.Version, "Bank statement is older than three months"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/admin/kyc/submissions/%d/history", sub.ID), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	history := response["history"].([]interface{})
	require.Len(t, history, 1)
	decision := history[0].(map[string]interface{})
	assert.Equal(t, "rejected", decision["outcome"])
	assert.Equal(t, "Bank statement is older than three months", decision["note"])
}

func TestReviewController_UploadOnBehalf(t *testing.T) {
	controller, router, testDB, admin, seller := setupReviewControllerTest(t)

	sub := &model.KYCSubmission{
		UserID:        seller.ID,
		CompanyName:   "Sharma Traders",
		PANNumber:     "ABCDE1234F",
		AadhaarNumber: "234567890123",
		Status:        model.StatusDocumentsPending,
		Version:       1,
	}
	require.NoError(t, testDB.Create(sub).Error)

	router.POST("/admin/kyc/submissions/:id/documents/:slot", func(c *gin.Context) {
		setUserIDInContext(c, admin.ID)
		controller.UploadDocument(c)
	})

	body, contentType := multipartBody(t, "file", "pan.pdf", "application/pdf", []byte("%PDF-1.4"))
	url := fmt.Sprintf("/admin/kyc/submissions/%d/documents/pan", sub.ID)
	req := httptest.NewRequest(http.MethodPost, url, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var doc model.KYCDocument
	require.NoError(t, testDB.Where("submission_id = ? AND slot = ?", sub.ID, model.SlotPAN).First(&doc).Error)
	assert.Equal(t, admin.ID, doc.UploadedBy)
}
