package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToman(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"plain integer", "300000", "۳۰۰٬۰۰۰ تومان"},
		{"small amount", "500", "۵۰۰ تومان"},
		{"grouped input", "1,250,000", "۱٬۲۵۰٬۰۰۰ تومان"},
		{"decimal string from wire", "100000.00", "۱۰۰٬۰۰۰ تومان"},
		{"nonzero fraction", "1500.50", "۱٬۵۰۰٫۵ تومان"},
		{"negative balance", "-42000", "-۴۲٬۰۰۰ تومان"},
		{"zero", "0", "۰ تومان"},
		{"non-numeric passthrough", "free", "free تومان"},
		{"empty passthrough", "", " تومان"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Toman(tt.value))
		})
	}
}

func TestOnlyDigits(t *testing.T) {
	assert.Equal(t, "123456", OnlyDigits("1,234.56"))
	assert.Equal(t, "", OnlyDigits("abc"))
	assert.Equal(t, "42", OnlyDigits(" 4 2 "))
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "", GroupThousands(""))
	assert.Equal(t, "1", GroupThousands("1"))
	assert.Equal(t, "999", GroupThousands("999"))
	assert.Equal(t, "1,000", GroupThousands("1000"))
	assert.Equal(t, "300,000", GroupThousands("300000"))
	assert.Equal(t, "12,345,678", GroupThousands("12x345y678"))
}
