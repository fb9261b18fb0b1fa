// db/repo_settings.go
package db

import (
	"context"
	"encoding/json"
	"errors"

	"Gin_postgres_redis_club_tool/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUnknownSettingsDomain = errors.New("unknown settings domain")

// SaveSettings 整行覆盖（配置是值对象，没有局部更新）
func (r *Repo) SaveSettings(ctx context.Context, domain string, payload any, updatedBy string) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	row := &models.Settings{Domain: domain, Payload: b, UpdatedBy: updatedBy}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "domain"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_by", "updated_at"}),
	}).Create(row).Error
}

func (r *Repo) loadSettings(ctx context.Context, domain string, out any) (found bool, err error) {
	var row models.Settings
	if err := r.DB.WithContext(ctx).Where("domain = ?", domain).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, json.Unmarshal(row.Payload, out)
}

// 读不到就回默认值，不依赖种子数据

func (r *Repo) MaterialSettings(ctx context.Context) (models.MaterialSettings, error) {
	s := models.DefaultMaterialSettings()
	_, err := r.loadSettings(ctx, models.SettingsDomainMaterial, &s)
	return s, err
}

func (r *Repo) SystemSettings(ctx context.Context) (models.SystemSettings, error) {
	s := models.DefaultSystemSettings()
	_, err := r.loadSettings(ctx, models.SettingsDomainSystem, &s)
	return s, err
}

func (r *Repo) WeatherSettings(ctx context.Context) (models.WeatherSettings, error) {
	s := models.DefaultWeatherSettings()
	_, err := r.loadSettings(ctx, models.SettingsDomainWeather, &s)
	return s, err
}
