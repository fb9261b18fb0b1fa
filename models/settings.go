// models/settings.go
package models

import "time"

const SettingsTable = "club_settings"

// 配置域
const (
	SettingsDomainMaterial = "material"
	SettingsDomainSystem   = "system"
	SettingsDomainWeather  = "weather"
)

// Settings 每个配置域一行，整体覆盖保存，Payload 是对应结构体的 JSON
type Settings struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Domain    string    `gorm:"uniqueIndex;size:20;not null" json:"domain"`
	Payload   []byte    `gorm:"type:jsonb;not null" json:"payload"`
	UpdatedBy string    `gorm:"type:uuid" json:"updatedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Settings) TableName() string { return SettingsTable }

// MaterialSettings 材料借用规则
type MaterialSettings struct {
	MaxLoanDays           int  `json:"maxLoanDays"`           // 1..90
	MaxOpenLoansPerMember int  `json:"maxOpenLoansPerMember"` // 1..50
	LowStockThreshold     int  `json:"lowStockThreshold"`     // 0..100，软阈值
	ReminderDays          int  `json:"reminderDays"`          // 0..30，到期前几天提醒
	RequireApproval       bool `json:"requireApproval"`       // 开启后新借用先进 pending
}

func DefaultMaterialSettings() MaterialSettings {
	return MaterialSettings{MaxLoanDays: 14, MaxOpenLoansPerMember: 5, LowStockThreshold: 2, ReminderDays: 2}
}

// SystemSettings 系统级规则
type SystemSettings struct {
	MaxDelayDays          int `json:"maxDelayDays"`          // 0..60，允许逾期的最长天数
	BlockDays             int `json:"blockDays"`             // 0..365，违约封禁天数，必须 >= MaxDelayDays
	SessionTimeoutMinutes int `json:"sessionTimeoutMinutes"` // 5..1440
	StaleCheckHour        int `json:"staleCheckHour"`        // 0..23，每日检查时刻
}

func DefaultSystemSettings() SystemSettings {
	return SystemSettings{MaxDelayDays: 7, BlockDays: 14, SessionTimeoutMinutes: 60, StaleCheckHour: 7}
}

// WeatherSettings 户外活动天气阈值
type WeatherSettings struct {
	MinTempC          int  `json:"minTempC"`          // -40..50
	MaxTempC          int  `json:"maxTempC"`          // -40..50，必须 >= MinTempC
	MaxWindKmh        int  `json:"maxWindKmh"`        // 0..200
	RainProbabilityPc int  `json:"rainProbabilityPc"` // 0..100，> 80 给警告
	AutoCancelOutdoor bool `json:"autoCancelOutdoor"`
}

func DefaultWeatherSettings() WeatherSettings {
	return WeatherSettings{MinTempC: -5, MaxTempC: 35, MaxWindKmh: 60, RainProbabilityPc: 70}
}
