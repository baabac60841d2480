// controllers/dashboard.go
package controllers

import (
	"net/http"
	"time"

	"betegna-backend/config"
	"betegna-backend/models"
	"betegna-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardOverview struct {
	TotalCustomers   int64                  `json:"totalCustomers"`
	MonthlyBookings  int64                  `json:"monthlyBookings"`
	MonthlyRevenue   float64                `json:"monthlyRevenue"`
	PendingBookings  int64                  `json:"pendingBookings"`
	LatestCustomers  []models.Customer      `json:"latestCustomers"`
	UpcomingBookings []models.BookedService `json:"upcomingBookings"`
}

// GetDashboardOverview aggregates the landing page numbers in one
// round trip: customer totals, this month's bookings and revenue, and
// the short lists the cards render.
func GetDashboardOverview(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	var overview DashboardOverview
	monthStart := utils.BeginningOfMonth(time.Now())

	if err := config.DB.Model(&models.Customer{}).
		Where("provider_id = ?", providerID).
		Count(&overview.TotalCustomers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch dashboard data")
		return
	}

	if err := config.DB.Model(&models.BookedService{}).
		Where("provider_id = ? AND created_at >= ?", providerID, monthStart).
		Count(&overview.MonthlyBookings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch dashboard data")
		return
	}

	// revenue counts completed bookings only
	if err := config.DB.Model(&models.BookedService{}).
		Where("provider_id = ? AND status = ? AND created_at >= ?",
			providerID, models.BookingStatusCompleted, monthStart).
		Select("COALESCE(SUM(price), 0)").
		Scan(&overview.MonthlyRevenue).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch dashboard data")
		return
	}

	if err := config.DB.Model(&models.BookedService{}).
		Where("provider_id = ? AND status = ?", providerID, models.BookingStatusPending).
		Count(&overview.PendingBookings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch dashboard data")
		return
	}

	latest, err := Cache.LatestCustomers(providerID, 5)
	if err != nil {
		zap.S().Errorw("latest customers lookup failed", "providerId", providerID, "err", err)
		latest = []models.Customer{}
	}
	overview.LatestCustomers = latest

	if err := config.DB.Where("provider_id = ? AND scheduled_at >= ? AND status IN ?",
		providerID, time.Now(), []string{models.BookingStatusPending, models.BookingStatusConfirmed}).
		Order("scheduled_at ASC").
		Limit(5).
		Find(&overview.UpcomingBookings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch dashboard data")
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetRevenueReport breaks completed-booking revenue down by day for the
// requested window (default: since the start of the month).
func GetRevenueReport(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	from := utils.BeginningOfMonth(time.Now())
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date, use YYYY-MM-DD")
			return
		}
		from = parsed
	}

	type dailyRevenue struct {
		Day     time.Time `json:"day"`
		Revenue float64   `json:"revenue"`
		Count   int64     `json:"count"`
	}

	var rows []dailyRevenue
	if err := config.DB.Model(&models.BookedService{}).
		Where("provider_id = ? AND status = ? AND created_at >= ?",
			providerID, models.BookingStatusCompleted, from).
		Select("DATE_TRUNC('day', created_at) AS day, COALESCE(SUM(price), 0) AS revenue, COUNT(*) AS count").
		Group("DATE_TRUNC('day', created_at)").
		Order("day ASC").
		Scan(&rows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch revenue report")
		return
	}

	c.JSON(http.StatusOK, gin.H{"from": from, "days": rows})
}
