package api

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"spinemark/internal/models"
	"spinemark/pkg/annotation"
	"spinemark/pkg/histmatch"
	"spinemark/pkg/preprocess"
	"spinemark/pkg/slicer"
	"spinemark/pkg/volume"
)

type browseItem struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	HasNii   bool   `json:"has_nii"`
	NiiCount int    `json:"nii_count,omitempty"`
}

// handleBrowse lists the subdirectories of a path with their nii.gz counts,
// so the frontend can navigate to an image folder.
func (s *Server) handleBrowse(c *gin.Context) {
	path := c.DefaultQuery("path", "~")
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	path, err := filepath.Abs(path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Path does not exist"})
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Path does not exist"})
		return
	}
	if !info.IsDir() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Path is not a directory"})
		return
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsPermission(err) {
			c.JSON(http.StatusForbidden, gin.H{"error": "No permission to access this directory"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := []browseItem{}
	if parent := filepath.Dir(path); parent != path {
		items = append(items, browseItem{Name: "..", Path: parent, Type: "directory"})
	}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		sub := filepath.Join(path, entry.Name())
		count := countNiiFiles(sub)
		items = append(items, browseItem{
			Name:     entry.Name(),
			Path:     sub,
			Type:     "directory",
			HasNii:   count > 0,
			NiiCount: count,
		})
	}

	c.JSON(http.StatusOK, gin.H{"current_path": path, "items": items})
}

type folderRequest struct {
	FolderPath string `json:"folder_path" binding:"required"`
}

// handleSetFolder selects the working image folder, creates its Labels
// directory and opens a session for it.
func (s *Server) handleSetFolder(c *gin.Context) {
	var req folderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "folder_path is required"})
		return
	}

	info, err := os.Stat(req.FolderPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Folder does not exist"})
		return
	}
	if !info.IsDir() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Path is not a directory"})
		return
	}

	niiFiles := listNiiFiles(req.FolderPath)
	if len(niiFiles) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No nii.gz files in folder"})
		return
	}

	labelsDir := filepath.Join(req.FolderPath, "Labels")
	store, err := annotation.NewStore(labelsDir)
	if err != nil {
		log.Error("[API] Couldn't create labels folder: ", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Couldn't create labels folder"})
		return
	}

	token := s.sessions.Create(req.FolderPath, store)
	c.JSON(http.StatusOK, gin.H{
		"message":       "Folder set successfully",
		"file_count":    len(niiFiles),
		"labels_folder": labelsDir,
		"session_token": token,
	})
}

// handleListImages returns the nii.gz files of the session folder.
func (s *Server) handleListImages(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	images := listNiiFiles(sess.FolderPath)
	c.JSON(http.StatusOK, gin.H{"images": images, "count": len(images)})
}

// handleGetSlice delivers one slice of an image as a base64 PNG, in canvas
// orientation. The slice index defaults to the middle slice and is clamped
// into range; an unknown axis is rejected. When a reference query is given,
// the slice is histogram-matched against the reference volume's middle
// slice on the same axis before encoding.
func (s *Server) handleGetSlice(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	axis, err := models.ParseAxis(c.DefaultQuery("axis", string(models.Sagittal)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vol, ok := s.loadVolume(c, sess, c.Param("filename"))
	if !ok {
		return
	}

	index := slicer.MiddleIndex(vol, axis)
	if raw, present := c.GetQuery("slice_index"); present {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slice_index must be an integer"})
			return
		}
		index = slicer.ClampIndex(parsed, vol.Extent(axis))
	}

	slice := slicer.Extract(vol, axis, index)
	display := preprocess.ToDisplayRange(slice.Data)

	if refName := c.Query("reference"); refName != "" {
		refVol, ok := s.loadVolume(c, sess, refName)
		if !ok {
			return
		}
		refSlice := slicer.Extract(refVol, axis, slicer.MiddleIndex(refVol, axis))
		display = histmatch.Match(display, preprocess.ToDisplayRange(refSlice.Data))
	}

	encoded, err := encodePNG(display, slice.Width, slice.Height)
	if err != nil {
		log.Error("[API] Couldn't encode slice: ", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Couldn't encode slice"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"image":       encoded,
		"axis":        axis,
		"slice_index": index,
		"slice_shape": []int{slice.Height, slice.Width},
	})
}

// handleGetInfo returns an image's per-axis extents.
func (s *Server) handleGetInfo(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	vol, ok := s.loadVolume(c, sess, c.Param("filename"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, volume.GetInfo(vol))
}

type annotationEntry struct {
	Label string `json:"label"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Z     int    `json:"z"`
}

type annotationRequest struct {
	Filename    string            `json:"filename" binding:"required"`
	Annotations []annotationEntry `json:"annotations"`
}

// handleSaveAnnotations persists an annotation set as CSV.
func (s *Server) handleSaveAnnotations(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	var req annotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename is required"})
		return
	}

	records := make([]annotation.Record, len(req.Annotations))
	for i, a := range req.Annotations {
		records[i] = annotation.Record{Label: a.Label, X: a.X, Y: a.Y, Z: a.Z}
	}

	if err := sess.Labels.Save(req.Filename, records); err != nil {
		log.Error("[API] Couldn't save annotations: ", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Annotation saved successfully",
		"file":    filepath.Join(sess.Labels.Dir(), strings.TrimSuffix(req.Filename, ".nii.gz")+".csv"),
	})
}

// handleGetAnnotations returns the stored annotation set for an image. A
// never-annotated image yields an empty set.
func (s *Server) handleGetAnnotations(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	records, err := sess.Labels.Load(c.Param("filename"))
	if err != nil {
		log.Error("[API] Couldn't load annotations: ", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	annotations := make([]annotationEntry, len(records))
	for i, r := range records {
		annotations[i] = annotationEntry{Label: r.Label, X: r.X, Y: r.Y, Z: r.Z}
	}
	c.JSON(http.StatusOK, gin.H{"annotations": annotations})
}

// handleAnnotatedFiles lists the images that already have annotations.
func (s *Server) handleAnnotatedFiles(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	files, err := sess.Labels.ListAnnotated()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"annotated_files": files})
}

// handlePreview returns the middle slice on all three axes plus the
// volume's extents.
func (s *Server) handlePreview(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	vol, ok := s.loadVolume(c, sess, c.Param("filename"))
	if !ok {
		return
	}

	previews := gin.H{}
	for _, axis := range []models.Axis{models.Sagittal, models.Coronal, models.Axial} {
		index := slicer.MiddleIndex(vol, axis)
		slice := slicer.Extract(vol, axis, index)
		encoded, err := encodePNG(preprocess.ToDisplayRange(slice.Data), slice.Width, slice.Height)
		if err != nil {
			log.Error("[API] Couldn't encode preview: ", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Couldn't encode preview"})
			return
		}
		previews[string(axis)] = gin.H{"image": encoded, "slice_index": index}
	}

	c.JSON(http.StatusOK, gin.H{"previews": previews, "info": volume.GetInfo(vol)})
}

// loadVolume resolves and loads an image of the session folder, answering
// 404 when the file is absent.
func (s *Server) loadVolume(c *gin.Context, sess *Session, filename string) (*models.Volume, bool) {
	path := filepath.Join(sess.FolderPath, filepath.Base(filename))
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File does not exist"})
		return nil, false
	}

	vol, err := volume.Load(path)
	if err != nil {
		log.Error("[API] Couldn't load volume: ", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return vol, true
}

// encodePNG turns 8-bit slice data into a data-URI PNG.
func encodePNG(display []uint8, width, height int) (string, error) {
	img := preprocess.GrayImage(display, width, height)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", err
	}
	return fmt.Sprintf("data:image/png;base64,%s",
		base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}

func listNiiFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".nii.gz") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

func countNiiFiles(dir string) int {
	return len(listNiiFiles(dir))
}
