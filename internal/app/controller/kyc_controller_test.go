package controller

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
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
	"github.com/nvaghela/dukaan-backend/internal/validation"
)

func setupKYCControllerTest(t *testing.T) (*KYCController, *gin.Engine, *gorm.DB, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	require.NoError(t, validation.RegisterCustomValidators())

	kycRepo := repository.NewKYCRepository(testDB)
	kycService := service.NewKYCService(kycRepo, nil)
	uploadService := service.NewUploadService(kycRepo, storage.NewMemoryStorage(), nil)
	controller := NewKYCController(kycService, uploadService, 30*time.Second)

	seller := &model.User{
		Email:        "seller@example.com",
		PasswordHash: "hash",
		Name:         "Test Seller",
		Role:         model.RoleSeller,
	}
	testDB.Create(seller)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return controller, router, testDB, seller
}

// Helper function to set user ID in context
func setUserIDInContext(c *gin.Context, userID uint) {
	c.Set("user_id", userID)
}

func validDetailsBody() map[string]interface{} {
	return map[string]interface{}{
		"company_name":   "Sharma Traders",
		"state":          "Maharashtra",
		"city":           "Pune",
		"pin_code":       "411001",
		"mobile_number":  "9876543210",
		"pan_number":     "ABCDE1234F",
		"aadhaar_number": "234567890123",
	}
}

func multipartBody(t *testing.T, fieldName, fileName, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestKYCController_GetStatus_NoSubmission(t *testing.T) {
	controller, router, _, seller := setupKYCControllerTest(t)

	router.GET("/kyc/status", func(c *gin.Context) {
		setUserIDInContext(c, seller.ID)
		controller.GetStatus(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/kyc/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "no_submission", response["status"])
	assert.Equal(t, "business_details", response["resume_step"])
	assert.Len(t, response["missing"], 4)
}

func TestKYCController_IsVerified(t *testing.T) {
	controller, router, testDB, seller := setupKYCControllerTest(t)

	router.GET("/kyc/verified", func(c *gin.Context) {
		setUserIDInContext(c, seller.ID)
		controller.IsVerified(c)
	})

	t.Run("No submission", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/kyc/verified", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, false, response["verified"])
	})

	t.Run("Verified submission", func(t *testing.T) {
		sub := &model.KYCSubmission{
			UserID:        seller.ID,
			CompanyName:   "Sharma Traders",
			PANNumber:     "ABCDE1234F",
			AadhaarNumber: "234567890123",
			Status:        model.StatusVerified,
			IsVerified:    true,
			Version:       2,
		}
		require.NoError(t, testDB.Create(sub).Error)

		req := httptest.NewRequest(http.MethodGet, "/kyc/verified", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, true, response["verified"])
	})
}

func TestKYCController_SaveDetails(t *testing.T) {
	controller, router, _, seller := setupKYCControllerTest(t)

	router.PUT("/kyc/details", func(c *gin.Context) {
		setUserIDInContext(c, seller.ID)
		controller.SaveDetails(c)
	})

	t.Run("Valid details", func(t *testing.T) {
		payload, _ := json.Marshal(validDetailsBody())
		req := httptest.NewRequest(http.MethodPut, "/kyc/details", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		submission := response["submission"].(map[string]interface{})
		assert.Equal(t, "documents_pending", submission["status"])
	})

	t.Run("Invalid PAN format", func(t *testing.T) {
		body := validDetailsBody()
		body["pan_number"] = "INVALID"
		payload, _ := json.Marshal(body)

		req := httptest.NewRequest(http.MethodPut, "/kyc/details", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_INVALID_FORMAT")
	})

	t.Run("Invalid GSTIN format", func(t *testing.T) {
		body := validDetailsBody()
		body["gst_number"] = "NOT-A-GSTIN"
		payload, _ := json.Marshal(body)

		req := httptest.NewRequest(http.MethodPut, "/kyc/details", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Invalid mobile number", func(t *testing.T) {
		body := validDetailsBody()
		body["mobile_number"] = "1234567890" // must start with 6-9
		payload, _ := json.Marshal(body)

		req := httptest.NewRequest(http.MethodPut, "/kyc/details", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestKYCController_UploadDocument(t *testing.T) {
	controller, router, testDB, seller := setupKYCControllerTest(t)

	sub := &model.KYCSubmission{
		UserID:        seller.ID,
		CompanyName:   "Sharma Traders",
		PANNumber:     "ABCDE1234F",
		AadhaarNumber: "234567890123",
		Status:        model.StatusDocumentsPending,
		Version:       1,
	}
	require.NoError(t, testDB.Create(sub).Error)

	router.POST("/kyc/documents/:slot", func(c *gin.Context) {
		setUserIDInContext(c, seller.ID)
		controller.UploadDocument(c)
	})

	t.Run("Valid upload", func(t *testing.T) {
		body, contentType := multipartBody(t, "file", "pan.pdf", "application/pdf", []byte("%PDF-1.4 test"))
		req := httptest.NewRequest(http.MethodPost, "/kyc/documents/pan", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		doc := response["document"].(map[string]interface{})
		assert.Equal(t, "pan", doc["slot"])
		assert.Equal(t, "pan.pdf", doc["file_name"])
	})

	t.Run("Unknown slot", func(t *testing.T) {
		body, contentType := multipartBody(t, "file", "x.pdf", "application/pdf", []byte("%PDF"))
		req := httptest.NewRequest(http.MethodPost, "/kyc/documents/selfie", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "KYC_UNKNOWN_SLOT")
	})

	t.Run("Invalid file type", func(t *testing.T) {
		body, contentType := multipartBody(t, "file", "pan.gif", "image/gif", []byte("GIF89a"))
		req := httptest.NewRequest(http.MethodPost, "/kyc/documents/pan", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "UPLOAD_INVALID_FILE_TYPE")
	})

	t.Run("Declared PDF with mismatched payload", func(t *testing.T) {
		body, contentType := multipartBody(t, "file", "pan.pdf", "application/pdf", []byte("not a pdf at all"))
		req := httptest.NewRequest(http.MethodPost, "/kyc/documents/pan", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "UPLOAD_INVALID_FILE_TYPE")
	})

	t.Run("Missing file field", func(t *testing.T) {
		body, contentType := multipartBody(t, "wrong_field", "pan.pdf", "application/pdf", []byte("%PDF"))
		req := httptest.NewRequest(http.MethodPost, "/kyc/documents/pan", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "UPLOAD_FAILED")
	})

	t.Run("GST slot without declared number", func(t *testing.T) {
		body, contentType := multipartBody(t, "file", "gst.pdf", "application/pdf", []byte("%PDF"))
		req := httptest.NewRequest(http.MethodPost, "/kyc/documents/gst", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestKYCController_RemoveDocument(t *testing.T) {
	controller, router, testDB, seller := setupKYCControllerTest(t)

	sub := &model.KYCSubmission{
		UserID:        seller.ID,
		CompanyName:   "Sharma Traders",
		PANNumber:     "ABCDE1234F",
		AadhaarNumber: "234567890123",
		Status:        model.StatusDocumentsPending,
		Version:       1,
	}
	require.NoError(t, testDB.Create(sub).Error)

	router.POST("/kyc/documents/:slot", func(c *gin.Context) {
		setUserIDInContext(c, seller.ID)
		controller.UploadDocument(c)
	})
	router.DELETE("/kyc/documents/:slot", func(c *gin.Context) {
		setUserIDInContext(c, seller.ID)
		controller.RemoveDocument(c)
	})

	body, contentType := multipartBody(t, "file", "pan.pdf", "application/pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/kyc/documents/pan", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/kyc/documents/pan", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Removing again reports the slot as empty
	req = httptest.NewRequest(http.MethodDelete, "/kyc/documents/pan", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "KYC_DOCUMENT_NOT_FOUND")
}
