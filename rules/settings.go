// rules/settings.go
// 三个配置域的校验与自动修正。纯函数：错误挡保存，警告放行。
// 先查单字段边界，再查跨字段规则。AutoCorrect* 幂等。
package rules

import (
	"fmt"

	"Gin_postgres_redis_club_tool/models"
)

type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Valid    bool         `json:"valid"`
	Errors   []FieldIssue `json:"errors"`
	Warnings []FieldIssue `json:"warnings"`
}

func (r *ValidationResult) addError(field, format string, args ...any) {
	r.Errors = append(r.Errors, FieldIssue{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) addWarning(field, format string, args ...any) {
	r.Warnings = append(r.Warnings, FieldIssue{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) finish() ValidationResult {
	r.Valid = len(r.Errors) == 0
	return *r
}

func checkRange(r *ValidationResult, field string, v, lo, hi int) {
	if v < lo || v > hi {
		r.addError(field, "must be between %d and %d, got %d", lo, hi, v)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ----- material -----

func ValidateMaterialSettings(s models.MaterialSettings) ValidationResult {
	var r ValidationResult
	checkRange(&r, "maxLoanDays", s.MaxLoanDays, 1, 90)
	checkRange(&r, "maxOpenLoansPerMember", s.MaxOpenLoansPerMember, 1, 50)
	checkRange(&r, "lowStockThreshold", s.LowStockThreshold, 0, 100)
	checkRange(&r, "reminderDays", s.ReminderDays, 0, 30)
	// 跨字段：提醒不能晚于借期本身
	if s.ReminderDays >= 0 && s.MaxLoanDays >= 1 && s.ReminderDays > s.MaxLoanDays {
		r.addError("reminderDays", "must not exceed maxLoanDays (%d)", s.MaxLoanDays)
	}
	if s.MaxLoanDays > 30 {
		r.addWarning("maxLoanDays", "loans longer than 30 days make inventory hard to track")
	}
	return r.finish()
}

func AutoCorrectMaterialSettings(s models.MaterialSettings) models.MaterialSettings {
	s.MaxLoanDays = clamp(s.MaxLoanDays, 1, 90)
	s.MaxOpenLoansPerMember = clamp(s.MaxOpenLoansPerMember, 1, 50)
	s.LowStockThreshold = clamp(s.LowStockThreshold, 0, 100)
	s.ReminderDays = clamp(s.ReminderDays, 0, 30)
	if s.ReminderDays > s.MaxLoanDays {
		s.ReminderDays = s.MaxLoanDays
	}
	return s
}

// ----- system -----

func ValidateSystemSettings(s models.SystemSettings) ValidationResult {
	var r ValidationResult
	checkRange(&r, "maxDelayDays", s.MaxDelayDays, 0, 60)
	checkRange(&r, "blockDays", s.BlockDays, 0, 365)
	checkRange(&r, "sessionTimeoutMinutes", s.SessionTimeoutMinutes, 5, 1440)
	checkRange(&r, "staleCheckHour", s.StaleCheckHour, 0, 23)
	// 跨字段：封禁天数必须覆盖允许的逾期天数
	if s.BlockDays >= 0 && s.BlockDays <= 365 && s.BlockDays < s.MaxDelayDays {
		r.addError("blockDays", "must be >= maxDelayDays (%d)", s.MaxDelayDays)
	}
	if s.SessionTimeoutMinutes > 480 {
		r.addWarning("sessionTimeoutMinutes", "sessions longer than 8h weaken shared-computer safety")
	}
	return r.finish()
}

func AutoCorrectSystemSettings(s models.SystemSettings) models.SystemSettings {
	s.MaxDelayDays = clamp(s.MaxDelayDays, 0, 60)
	s.BlockDays = clamp(s.BlockDays, 0, 365)
	s.SessionTimeoutMinutes = clamp(s.SessionTimeoutMinutes, 5, 1440)
	s.StaleCheckHour = clamp(s.StaleCheckHour, 0, 23)
	if s.BlockDays < s.MaxDelayDays {
		s.BlockDays = s.MaxDelayDays
	}
	return s
}

// ----- weather -----

func ValidateWeatherSettings(s models.WeatherSettings) ValidationResult {
	var r ValidationResult
	checkRange(&r, "minTempC", s.MinTempC, -40, 50)
	checkRange(&r, "maxTempC", s.MaxTempC, -40, 50)
	checkRange(&r, "maxWindKmh", s.MaxWindKmh, 0, 200)
	checkRange(&r, "rainProbabilityPc", s.RainProbabilityPc, 0, 100)
	if s.MinTempC > s.MaxTempC {
		r.addError("minTempC", "must not exceed maxTempC (%d)", s.MaxTempC)
	}
	if s.RainProbabilityPc > 80 {
		r.addWarning("rainProbabilityPc", "thresholds above 80%% rarely cancel anything")
	}
	return r.finish()
}

func AutoCorrectWeatherSettings(s models.WeatherSettings) models.WeatherSettings {
	s.MinTempC = clamp(s.MinTempC, -40, 50)
	s.MaxTempC = clamp(s.MaxTempC, -40, 50)
	s.MaxWindKmh = clamp(s.MaxWindKmh, 0, 200)
	s.RainProbabilityPc = clamp(s.RainProbabilityPc, 0, 100)
	if s.MinTempC > s.MaxTempC {
		s.MinTempC = s.MaxTempC
	}
	return s
}
