package rules

import (
	"reflect"
	"testing"

	"Gin_postgres_redis_club_tool/models"
)

func TestValidateMaterialSettings(t *testing.T) {
	ok := models.DefaultMaterialSettings()
	if r := ValidateMaterialSettings(ok); !r.Valid || len(r.Errors) != 0 {
		t.Fatalf("defaults should validate, got %+v", r)
	}

	bad := models.MaterialSettings{MaxLoanDays: 0, MaxOpenLoansPerMember: 99, LowStockThreshold: -1, ReminderDays: 31}
	r := ValidateMaterialSettings(bad)
	if r.Valid {
		t.Fatal("should be invalid")
	}
	if len(r.Errors) != 4 {
		t.Fatalf("want 4 errors, got %d: %+v", len(r.Errors), r.Errors)
	}

	// 跨字段：提醒天数超过借期
	cross := models.MaterialSettings{MaxLoanDays: 5, MaxOpenLoansPerMember: 3, LowStockThreshold: 1, ReminderDays: 10}
	r = ValidateMaterialSettings(cross)
	if r.Valid {
		t.Fatal("reminderDays > maxLoanDays should be an error")
	}

	// 软阈值只给警告，不挡保存
	warn := models.MaterialSettings{MaxLoanDays: 45, MaxOpenLoansPerMember: 3, LowStockThreshold: 1, ReminderDays: 2}
	r = ValidateMaterialSettings(warn)
	if !r.Valid || len(r.Warnings) == 0 {
		t.Fatalf("long loans should warn but pass, got %+v", r)
	}
}

func TestValidateSystemSettingsCrossField(t *testing.T) {
	s := models.DefaultSystemSettings()
	s.MaxDelayDays = 20
	s.BlockDays = 10 // 封禁必须 >= 逾期上限
	r := ValidateSystemSettings(s)
	if r.Valid {
		t.Fatal("blockDays < maxDelayDays should be an error")
	}
	s.BlockDays = 20
	if r := ValidateSystemSettings(s); !r.Valid {
		t.Fatalf("blockDays == maxDelayDays should pass, got %+v", r)
	}
}

func TestValidateWeatherSettings(t *testing.T) {
	s := models.DefaultWeatherSettings()
	s.MinTempC = 20
	s.MaxTempC = 10
	if r := ValidateWeatherSettings(s); r.Valid {
		t.Fatal("minTempC > maxTempC should be an error")
	}

	s = models.DefaultWeatherSettings()
	s.RainProbabilityPc = 95
	r := ValidateWeatherSettings(s)
	if !r.Valid || len(r.Warnings) != 1 {
		t.Fatalf("high rain threshold should warn but pass, got %+v", r)
	}
}

// AutoCorrect* 必须幂等，且修正后的配置必须能通过校验
func TestAutoCorrectIdempotent(t *testing.T) {
	t.Run("material", func(t *testing.T) {
		in := models.MaterialSettings{MaxLoanDays: 500, MaxOpenLoansPerMember: -3, LowStockThreshold: 101, ReminderDays: 99}
		once := AutoCorrectMaterialSettings(in)
		twice := AutoCorrectMaterialSettings(once)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("not idempotent: %+v vs %+v", once, twice)
		}
		if r := ValidateMaterialSettings(once); !r.Valid {
			t.Fatalf("corrected config should validate, got %+v", r.Errors)
		}
	})
	t.Run("system", func(t *testing.T) {
		in := models.SystemSettings{MaxDelayDays: 60, BlockDays: 3, SessionTimeoutMinutes: 0, StaleCheckHour: 99}
		once := AutoCorrectSystemSettings(in)
		twice := AutoCorrectSystemSettings(once)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("not idempotent: %+v vs %+v", once, twice)
		}
		if once.BlockDays < once.MaxDelayDays {
			t.Fatalf("cross-field rule not repaired: %+v", once)
		}
		if r := ValidateSystemSettings(once); !r.Valid {
			t.Fatalf("corrected config should validate, got %+v", r.Errors)
		}
	})
	t.Run("weather", func(t *testing.T) {
		in := models.WeatherSettings{MinTempC: 100, MaxTempC: -100, MaxWindKmh: 999, RainProbabilityPc: -5}
		once := AutoCorrectWeatherSettings(in)
		twice := AutoCorrectWeatherSettings(once)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("not idempotent: %+v vs %+v", once, twice)
		}
		if r := ValidateWeatherSettings(once); !r.Valid {
			t.Fatalf("corrected config should validate, got %+v", r.Errors)
		}
	})
}

// 合法配置经过 AutoCorrect 不应被改动
func TestAutoCorrectKeepsValidConfig(t *testing.T) {
	m := models.DefaultMaterialSettings()
	if got := AutoCorrectMaterialSettings(m); got != m {
		t.Errorf("material defaults changed: %+v", got)
	}
	s := models.DefaultSystemSettings()
	if got := AutoCorrectSystemSettings(s); got != s {
		t.Errorf("system defaults changed: %+v", got)
	}
	w := models.DefaultWeatherSettings()
	if got := AutoCorrectWeatherSettings(w); got != w {
		t.Errorf("weather defaults changed: %+v", got)
	}
}
