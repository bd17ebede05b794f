package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vathes-labs/pipedash/internal/adapter"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		col  adapter.Column
		want Kind
	}{
		{"varchar", adapter.Column{Name: "subject_id", Type: "varchar(16)"}, KindString},
		{"text", adapter.Column{Name: "notes", Type: "TEXT"}, KindString},
		{"int", adapter.Column{Name: "session_idx", Type: "int(11)"}, KindNumber},
		{"bigint", adapter.Column{Name: "counter", Type: "BIGINT"}, KindNumber},
		{"decimal", adapter.Column{Name: "weight", Type: "decimal(5,2)"}, KindNumber},
		{"float", adapter.Column{Name: "dose", Type: "float"}, KindNumber},
		{"double", adapter.Column{Name: "rate", Type: "DOUBLE PRECISION"}, KindNumber},
		{"date", adapter.Column{Name: "dob", Type: "date"}, KindDate},
		{"datetime", adapter.Column{Name: "session_time", Type: "datetime"}, KindTime},
		{"timestamp", adapter.Column{Name: "created", Type: "TIMESTAMP"}, KindTime},
		{"enum", adapter.Column{Name: "sex", Type: "enum('M','F','U')", EnumValues: []string{"M", "F", "U"}}, KindEnum},
		{"interval not numeric", adapter.Column{Name: "span", Type: "interval"}, KindString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.col))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "string", KindString.String())
	assert.Equal(t, "number", KindNumber.String())
	assert.Equal(t, "date", KindDate.String())
	assert.Equal(t, "time", KindTime.String())
	assert.Equal(t, "enum", KindEnum.String())
}
