package ws

import (
	"net/http"
	"sort"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/arthurdotwork/signaling/internal/domain"
)

type roomSummary struct {
	ID      string `json:"id"`
	Members int    `json:"members"`
}

// NewRouter wires the HTTP surface: the websocket upgrade, a health probe and
// a read-only room listing.
func NewRouter(handler *Handler, rooms domain.RoomDirectory, allowedOrigin string) *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.Use(middleware.Recover())
	router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{allowedOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))

	router.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	router.GET("/rooms", func(c echo.Context) error {
		return listRooms(c, rooms)
	})

	router.GET("/ws", handler.Serve)

	return router
}

func listRooms(c echo.Context, rooms domain.RoomDirectory) error {
	byID, err := rooms.Rooms(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	summaries := make([]roomSummary, 0, len(byID))
	for roomID, members := range byID {
		summaries = append(summaries, roomSummary{ID: roomID, Members: members})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ID < summaries[j].ID
	})

	return c.JSON(http.StatusOK, summaries)
}
