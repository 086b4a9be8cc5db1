package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pinchpop/backend/internal/config"
	"github.com/pinchpop/backend/internal/game"
)

// GetConfig returns the render constants the frontend needs to draw the
// board the same way the engine simulates it.
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	colors := make([]gin.H, 0, len(game.Palette))
	for _, col := range game.Palette {
		colors = append(colors, gin.H{
			"label":  string(col),
			"rgb":    col.RGB(),
			"points": col.BasePoints(),
		})
	}

	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"canvas_width":    game.CanvasWidth,
			"canvas_height":   game.CanvasHeight,
			"grid_cols":       game.GridCols,
			"bubble_radius":   game.BubbleRadius,
			"danger_row":      game.DangerRow,
			"max_drag":        game.MaxDrag,
			"pinch_threshold": game.PinchThreshold,
			"tick_rate":       cfg.TickRate,
			"snapshot_rate":   cfg.SnapshotRate,
			"colors":          colors,
		})
	}
}
