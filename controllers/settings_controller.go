// controllers/settings_controller.go
package controllers

import (
	"net/http"

	"Gin_postgres_redis_club_tool/app"
	"Gin_postgres_redis_club_tool/models"
	"Gin_postgres_redis_club_tool/rules"

	"github.com/gin-gonic/gin"
)

type SettingsController struct{ *Srv }

func NewSettingsController(s *Srv) *SettingsController { return &SettingsController{Srv: s} }

// GET /api/settings/:domain
func (sc *SettingsController) GetSettings(c *gin.Context) {
	ctx := c.Request.Context()
	switch c.Param("domain") {
	case models.SettingsDomainMaterial:
		s, err := sc.Repo.MaterialSettings(ctx)
		if err != nil {
			sc.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	case models.SettingsDomainSystem:
		s, err := sc.Repo.SystemSettings(ctx)
		if err != nil {
			sc.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	case models.SettingsDomainWeather:
		s, err := sc.Repo.WeatherSettings(ctx)
		if err != nil {
			sc.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	default:
		c.JSON(http.StatusNotFound, app.H{"error": "unknown settings domain"})
	}
}

// PUT /api/settings/:domain
// 错误挡保存（422 带字段级信息），警告放行并回传
func (sc *SettingsController) SaveSettings(c *gin.Context) {
	uid, _, _, _ := currentUser(c)
	ctx := c.Request.Context()

	var (
		domain  = c.Param("domain")
		result  rules.ValidationResult
		payload any
	)
	switch domain {
	case models.SettingsDomainMaterial:
		var s models.MaterialSettings
		if err := c.ShouldBindJSON(&s); err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
			return
		}
		result, payload = rules.ValidateMaterialSettings(s), s
	case models.SettingsDomainSystem:
		var s models.SystemSettings
		if err := c.ShouldBindJSON(&s); err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
			return
		}
		result, payload = rules.ValidateSystemSettings(s), s
	case models.SettingsDomainWeather:
		var s models.WeatherSettings
		if err := c.ShouldBindJSON(&s); err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
			return
		}
		result, payload = rules.ValidateWeatherSettings(s), s
	default:
		c.JSON(http.StatusNotFound, app.H{"error": "unknown settings domain"})
		return
	}

	if !result.Valid {
		c.JSON(http.StatusUnprocessableEntity, app.H{"errors": result.Errors, "warnings": result.Warnings})
		return
	}
	if err := sc.Repo.SaveSettings(ctx, domain, payload, uid); err != nil {
		sc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "warnings": result.Warnings})
}

// POST /api/settings/:domain/autocorrect
// 只回修正结果，不保存，前端预览后再提交
func (sc *SettingsController) AutoCorrect(c *gin.Context) {
	switch c.Param("domain") {
	case models.SettingsDomainMaterial:
		var s models.MaterialSettings
		if err := c.ShouldBindJSON(&s); err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, rules.AutoCorrectMaterialSettings(s))
	case models.SettingsDomainSystem:
		var s models.SystemSettings
		if err := c.ShouldBindJSON(&s); err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, rules.AutoCorrectSystemSettings(s))
	case models.SettingsDomainWeather:
		var s models.WeatherSettings
		if err := c.ShouldBindJSON(&s); err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, rules.AutoCorrectWeatherSettings(s))
	default:
		c.JSON(http.StatusNotFound, app.H{"error": "unknown settings domain"})
	}
}
