package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"vision-fit-guide/backend/internal/scoring"
	"vision-fit-guide/backend/internal/store"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func (s *Server) queryFromRequest(c *gin.Context) store.FitGuideQuery {
	return store.FitGuideQuery{
		Query:      strings.TrimSpace(c.Query("q")),
		Country:    strings.TrimSpace(c.Query("country")),
		Confidence: strings.TrimSpace(c.Query("confidence")),
		Sort:       strings.TrimSpace(c.Query("sort")),
	}
}

func (s *Server) handleListFitGuides(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 0 {
		page = 0
	}
	pageSize, _ := strconv.Atoi(firstNonEmpty(c.Query("pageSize"), c.Query("page_size")))
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	query := s.queryFromRequest(c)
	query.Offset = page * pageSize
	query.Limit = pageSize

	rows, total, err := s.repo.ListFitGuides(c.Request.Context(), query)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	items := make([]FitGuideDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromModel(row))
	}
	c.JSON(http.StatusOK, FitGuideList{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (s *Server) handleGetFitGuide(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	guide, err := s.repo.GetFitGuide(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.renderError(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, FromModel(*guide))
}

func (s *Server) exportRows(c *gin.Context) ([]FitGuideDTO, bool) {
	rows, _, err := s.repo.ListFitGuides(c.Request.Context(), s.queryFromRequest(c))
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return nil, false
	}
	items := make([]FitGuideDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromModel(row))
	}
	return items, true
}

// CSVHeader lists the export columns in order.
var CSVHeader = []string{
	"id", "created_at", "church_name", "denomination", "contact_name", "contact_role", "email",
	"attendance", "top_country", "confidence", "first", "first_score", "second", "second_score",
	"third", "third_score", "raw_guatemala", "raw_uganda", "raw_ethiopia",
	"internal_email", "pastor_email",
}

// CSVRecord flattens a fit guide into one export line matching CSVHeader.
func CSVRecord(dto FitGuideDTO) []string {
	line := []string{
		dto.ID,
		dto.CreatedAt.UTC().Format(time.RFC3339),
		dto.ChurchName,
		dto.Denomination,
		dto.ContactName,
		dto.ContactRole,
		dto.Email,
		dto.Attendance,
		dto.TopCountry,
		dto.ConfidenceLevel,
	}
	for i := 0; i < 3; i++ {
		if i < len(dto.Top3) {
			line = append(line, string(dto.Top3[i].Country), strconv.Itoa(dto.Top3[i].Score))
		} else {
			line = append(line, "", "")
		}
	}
	for _, country := range scoring.Countries {
		line = append(line, strconv.Itoa(dto.Scores[country]))
	}
	return append(line, dto.InternalEmailStatus, dto.PastorEmailStatus)
}

func (s *Server) handleExportCSV(c *gin.Context) {
	rows, ok := s.exportRows(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", "attachment; filename=fit-guides.csv")
	c.Header("Content-Type", "text/csv")

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(CSVHeader); err != nil {
		return
	}
	for _, row := range rows {
		if err := writer.Write(CSVRecord(row)); err != nil {
			return
		}
	}
	writer.Flush()
}

func (s *Server) handleExportJSON(c *gin.Context) {
	rows, ok := s.exportRows(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=fit-guides-%s.json", time.Now().UTC().Format("20060102")))
	c.JSON(http.StatusOK, rows)
}

func (s *Server) handleLeadStream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				return true
			}
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" {
				return true
			}
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}

	client := s.leadNotifier.Register(conn)
	logrus.WithField("remote", conn.RemoteAddr().String()).Info("lead websocket connected")
	defer s.leadNotifier.Unregister(client)

	if _, total, err := s.repo.ListFitGuides(c.Request.Context(), store.FitGuideQuery{Limit: 1}); err == nil {
		_ = client.writeJSON(LeadEvent{Type: "hello", Total: total, Timestamp: time.Now().UTC()})
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("remote", conn.RemoteAddr().String()).Info("lead websocket closed")
			} else {
				logrus.WithError(err).Warn("lead websocket unexpected close")
			}
			break
		}
	}
}
