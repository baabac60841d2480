// controllers/media.go
package controllers

import (
	"image"
	"io"
	"net/http"
	"sync"

	"betegna-backend/services"
	"betegna-backend/storage"
	"betegna-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 10 MB per staged image
const maxStagedFileSize = 10 << 20

// MediaController handles the preview side of the media pipeline:
// staging raw files, cropping them, and releasing what the client
// abandons. Uploads carrying a draftId are grouped into an arena so one
// discard call frees the whole form's previews. Nothing here touches
// remote storage; persistence happens in the entity mutation pipeline.
type MediaController struct {
	Stage *services.MediaStage

	mu     sync.Mutex
	arenas map[string]*services.Arena
}

func NewMediaController(stage *services.MediaStage) *MediaController {
	return &MediaController{Stage: stage, arenas: make(map[string]*services.Arena)}
}

func (mc *MediaController) arena(draftID string) *services.Arena {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	a, ok := mc.arenas[draftID]
	if !ok {
		a = mc.Stage.NewArena()
		mc.arenas[draftID] = a
	}
	return a
}

func (mc *MediaController) stageAsset(c *gin.Context, draftID, name, contentType string, data []byte) (services.StagedAsset, bool) {
	if draftID == "" {
		return mc.Stage.Create(name, contentType, data), true
	}
	asset, err := mc.arena(draftID).Create(name, contentType, data)
	if err != nil {
		utils.RespondWithError(c, http.StatusConflict, "Draft already discarded")
		return services.StagedAsset{}, false
	}
	return asset, true
}

// StageUpload accepts a multipart file and returns its staged asset
// handle for use in a draft. An optional draftId field scopes the asset
// to that draft's arena.
func (mc *MediaController) StageUpload(c *gin.Context) {
	if _, ok := currentProviderID(c); !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "No file provided, use 'file' as the form field name")
		return
	}
	if fileHeader.Size > maxStagedFileSize {
		utils.RespondWithError(c, http.StatusBadRequest, "File too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Could not read file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Could not read file")
		return
	}

	asset, ok := mc.stageAsset(c, c.PostForm("draftId"), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, asset)
}

type CropInput struct {
	URI     string `json:"uri" binding:"required"`
	Site    string `json:"site" binding:"required"` // cover or banner
	DraftID string `json:"draftId"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	W       int    `json:"w" binding:"required"`
	H       int    `json:"h" binding:"required"`
}

// Crop runs one crop session over a staged asset: open, confirm, stage
// the cropped result. The source asset is released once the cropped
// replacement supersedes it.
func (mc *MediaController) Crop(c *gin.Context) {
	if _, ok := currentProviderID(c); !ok {
		return
	}

	var input CropInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var aspect services.Aspect
	switch input.Site {
	case "cover":
		aspect = services.AspectCover
	case "banner":
		aspect = services.AspectBanner
	default:
		utils.RespondWithError(c, http.StatusBadRequest, "Unknown crop site")
		return
	}

	raw, err := mc.Stage.Read(input.URI)
	if err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Staged asset not found")
		return
	}

	session := services.NewCropSession(aspect)
	if err := session.Open(raw); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Could not decode image")
		return
	}

	rect := image.Rect(input.X, input.Y, input.X+input.W, input.Y+input.H)
	cropped, err := session.Confirm(rect)
	if err != nil {
		session.Cancel()
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	asset, ok := mc.stageAsset(c, input.DraftID, cropped.Name, cropped.ContentType, cropped.Data)
	if !ok {
		return
	}
	mc.Stage.Release(input.URI)

	zap.S().Debugw("cropped staged asset", "from", input.URI, "to", asset.URI, "site", input.Site)
	c.JSON(http.StatusCreated, asset)
}

type ReleaseInput struct {
	URIs []string `json:"uris" binding:"required"`
}

// Release frees staged assets the client no longer references, e.g. on
// form teardown. Releasing an already-released URI is a no-op.
func (mc *MediaController) Release(c *gin.Context) {
	if _, ok := currentProviderID(c); !ok {
		return
	}

	var input ReleaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	for _, uri := range input.URIs {
		mc.Stage.Release(uri)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Released"})
}

type DiscardDraftInput struct {
	DraftID string `json:"draftId" binding:"required"`
}

// DiscardDraft closes the draft's arena, releasing every asset staged
// or cropped under it. Discarding an unknown or already-discarded draft
// is a no-op.
func (mc *MediaController) DiscardDraft(c *gin.Context) {
	if _, ok := currentProviderID(c); !ok {
		return
	}

	var input DiscardDraftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	mc.mu.Lock()
	arena, ok := mc.arenas[input.DraftID]
	delete(mc.arenas, input.DraftID)
	mc.mu.Unlock()
	if ok {
		arena.Close()
	}

	c.JSON(http.StatusOK, gin.H{"message": "Draft discarded"})
}

// helper used by feedback; keeps multipart reading in one place
func readMultipartFile(c *gin.Context, field string) (storage.File, bool, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return storage.File{}, false, nil
	}
	f, err := fileHeader.Open()
	if err != nil {
		return storage.File{}, false, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return storage.File{}, false, err
	}
	return storage.File{
		Name:        fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, true, nil
}
