package nchorder

import (
	"io"
	"net/http"

	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nchorder/nchorder/internal/chord"
	"github.com/nchorder/nchorder/internal/confproto"
)

type deviceStatus struct {
	Keys      int `json:"keys"`
	Mouse     int `json:"mouse"`
	Consumer  int `json:"consumer"`
	MultiChar int `json:"multichar"`
	Skipped   int `json:"skipped"`
}

// setupRouter exposes the maintenance surface: layout upload without a
// serial cable, current table counts, and Prometheus metrics.
func setupRouter(tables *chord.Tables, store *layoutStore) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlogger.SetLogger(ginlogger.WithLogger(
		func(_ *gin.Context, _ zerolog.Logger) zerolog.Logger {
			return webLogger
		},
	)))

	r.GET("/device/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, deviceStatus{
			Keys:      tables.KeyCount(),
			Mouse:     tables.MouseCount(),
			Consumer:  tables.ConsumerCount(),
			MultiChar: tables.MultiCharCount(),
			Skipped:   tables.SkippedCount(),
		})
	})

	r.POST("/device/layout", func(c *gin.Context) {
		data, err := io.ReadAll(io.LimitReader(c.Request.Body, confproto.MaxUploadSize+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(data) > confproto.MaxUploadSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "layout exceeds maximum size",
			})
			return
		}
		if err := store.CommitLayout(data); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		if c.Query("persist") == "true" {
			if err := store.SaveLayout(data); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"keys":      tables.KeyCount(),
			"mouse":     tables.MouseCount(),
			"consumer":  tables.ConsumerCount(),
			"multichar": tables.MultiCharCount(),
			"skipped":   tables.SkippedCount(),
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
