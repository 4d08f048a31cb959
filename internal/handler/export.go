package handler

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"mvp-tweet/internal/database"
	"mvp-tweet/internal/middleware"
	"mvp-tweet/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const exportTimeLayout = "2006-01-02 15:04:05"

var exportHeaders = []string{"ID", "Username", "Content", "Timestamp (UTC)"}

// ExportHandler lets a user download their own posts.
type ExportHandler struct {
	Store *database.Store
	now   func() time.Time
}

func NewExportHandler(store *database.Store) *ExportHandler {
	return &ExportHandler{Store: store, now: time.Now}
}

func (h *ExportHandler) loadOwnPosts(c *gin.Context) ([]database.FeedPost, bool) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Authentication token required")
		return nil, false
	}

	posts, err := h.Store.ListPostsByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		log.Printf("request_id=%s export: %v", middleware.RequestIDFromContext(c), err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Server error")
		return nil, false
	}
	return posts, true
}

func exportRow(p database.FeedPost) []string {
	return []string{
		fmt.Sprint(p.ID),
		p.Username,
		p.Content,
		p.Timestamp.UTC().Format(exportTimeLayout),
	}
}

// ExportCSV 导出帖子为 CSV
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	posts, ok := h.loadOwnPosts(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"posts_%s.csv\"",
		h.now().Format("20060102")))
	c.Status(http.StatusOK)

	if err := WritePostsCSV(c.Writer, posts); err != nil {
		log.Printf("request_id=%s export csv: %v", middleware.RequestIDFromContext(c), err)
	}
}

// WritePostsCSV writes a UTF-8 BOM, a header row and one row per post.
func WritePostsCSV(w io.Writer, posts []database.FeedPost) error {
	// UTF-8 BOM so spreadsheet tools detect the encoding
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeaders); err != nil {
		return err
	}
	for _, p := range posts {
		if err := writer.Write(exportRow(p)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportXLSX 导出帖子为 XLSX
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	posts, ok := h.loadOwnPosts(c)
	if !ok {
		return
	}

	f, err := BuildPostsWorkbook(posts)
	if err != nil {
		log.Printf("request_id=%s export xlsx: %v", middleware.RequestIDFromContext(c), err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Server error")
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"posts_%s.xlsx\"",
		h.now().Format("20060102")))
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		log.Printf("request_id=%s export xlsx: write: %v", middleware.RequestIDFromContext(c), err)
	}
}

const postsSheet = "Posts"

// BuildPostsWorkbook renders posts into a single-sheet workbook.
func BuildPostsWorkbook(posts []database.FeedPost) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", postsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, title := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(postsSheet, cell, title); err != nil {
			f.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for idx, p := range posts {
		row := idx + 2
		values := []interface{}{p.ID, p.Username, p.Content, p.Timestamp.UTC().Format(exportTimeLayout)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(postsSheet, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	// 设置列宽
	_ = f.SetColWidth(postsSheet, "A", "A", 8)
	_ = f.SetColWidth(postsSheet, "B", "B", 20)
	_ = f.SetColWidth(postsSheet, "C", "C", 60)
	_ = f.SetColWidth(postsSheet, "D", "D", 20)

	return f, nil
}
