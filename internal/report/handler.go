package report

import (
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

// RegisterRoutes: 帳票出力は manager/admin のみ
func RegisterRoutes(priv gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	priv.GET("/reports/attendance.csv", h.ExportAttendanceCSV)
}

func (h *Handler) ExportAttendanceCSV(c *gin.Context) {
	q := Query{
		From: c.Query("from"),
		To:   c.Query("to"),
	}
	if v := c.Query("user_id"); v != "" {
		q.UserID = &v
	}
	encoding := strings.ToLower(c.DefaultQuery("encoding", EncodingUTF8))

	contentType := "text/csv; charset=utf-8"
	if encoding == EncodingSJIS {
		contentType = "text/csv; charset=Shift_JIS"
	}
	filename := fmt.Sprintf("attendance_%s_%s.csv", q.From, q.To)

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.svc.WriteCSV(c.Request.Context(), c.Writer, q, encoding); err != nil {
		// 書き込み開始前のバリデーションエラーならJSONで返せる
		if !c.Writer.Written() {
			c.Header("Content-Type", "application/json; charset=utf-8")
			c.Header("Content-Disposition", "")
			c.JSON(toHTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		log.Printf("[ERROR] csv export aborted: %v", err)
		c.Abort()
	}
}
