package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"betegna-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mediaTestRouter(stage *services.MediaStage) *gin.Engine {
	gin.SetMode(gin.TestMode)
	mc := NewMediaController(stage)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("providerId", uuid.NewString())
	})
	r.POST("/media/stage", mc.StageUpload)
	r.POST("/media/release", mc.Release)
	r.POST("/media/discard", mc.DiscardDraft)
	return r
}

func multipartUpload(t *testing.T, draftID, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if draftID != "" {
		require.NoError(t, w.WriteField("draftId", draftID))
	}
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func stageThroughAPI(t *testing.T, r *gin.Engine, draftID, filename string) services.StagedAsset {
	t.Helper()
	body, contentType := multipartUpload(t, draftID, filename, []byte("img"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/media/stage", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var asset services.StagedAsset
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &asset))
	return asset
}

func TestStageUploadReturnsAssetHandle(t *testing.T) {
	stage := services.NewMediaStage()
	r := mediaTestRouter(stage)

	asset := stageThroughAPI(t, r, "", "photo.jpg")
	assert.True(t, services.IsStagedURI(asset.URI))
	assert.Equal(t, "photo.jpg", asset.Name)
	assert.Equal(t, 1, stage.Active())
}

func TestDiscardDraftReleasesItsAssets(t *testing.T) {
	stage := services.NewMediaStage()
	r := mediaTestRouter(stage)

	a := stageThroughAPI(t, r, "draft-1", "a.jpg")
	b := stageThroughAPI(t, r, "draft-1", "b.jpg")
	outside := stageThroughAPI(t, r, "", "keep.jpg")
	require.Equal(t, 3, stage.Active())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/media/discard",
		strings.NewReader(`{"draftId":"draft-1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// One discard frees the whole draft; the unscoped asset survives.
	assert.Equal(t, 1, stage.Active())
	_, err := stage.Read(a.URI)
	assert.Error(t, err)
	_, err = stage.Read(b.URI)
	assert.Error(t, err)
	_, err = stage.Read(outside.URI)
	assert.NoError(t, err)
}

func TestStageUploadAfterDiscardStartsFreshDraft(t *testing.T) {
	stage := services.NewMediaStage()
	r := mediaTestRouter(stage)

	stageThroughAPI(t, r, "draft-1", "a.jpg")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/media/discard",
		strings.NewReader(`{"draftId":"draft-1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Discarding drops the arena entirely, so a new upload under the
	// same id starts a fresh draft rather than conflicting.
	asset := stageThroughAPI(t, r, "draft-1", "b.jpg")
	assert.True(t, services.IsStagedURI(asset.URI))
	assert.Equal(t, 1, stage.Active())
}

func TestDiscardUnknownDraftIsNoOp(t *testing.T) {
	stage := services.NewMediaStage()
	r := mediaTestRouter(stage)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/media/discard",
		strings.NewReader(`{"draftId":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
