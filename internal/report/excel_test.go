package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hamkharj/internal/api"
)

func TestFilename(t *testing.T) {
	assert.Equal(t, "settlement-1403-02.xlsx", Filename(1403, 2))
	assert.Equal(t, "settlement-1403-11.xlsx", Filename(1403, 11))
}

func TestBuild(t *testing.T) {
	users := []api.User{
		{ID: 1, FirstName: "سارا", LastName: "محمدی"},
		{ID: 2, FirstName: "نیما", LastName: "رضایی"},
	}
	rep := &api.SettlementReport{
		ShamsiYear:  1403,
		ShamsiMonth: 2,
		Transfers: []api.TransferSuggestion{
			{FromUserID: 2, ToUserID: 1, Amount: "100000.00"},
		},
		MyBalances: []api.BalanceEntry{
			{UserID: 2, Amount: "-100000.00"},
		},
	}

	data, err := NewExcelWriter(nil).Build(rep, users)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "تسویه اردیبهشت 1403", title)

	from, err := f.GetCellValue(sheetName, "A4")
	require.NoError(t, err)
	assert.Equal(t, "نیما رضایی", from)

	to, err := f.GetCellValue(sheetName, "B4")
	require.NoError(t, err)
	assert.Equal(t, "سارا محمدی", to)

	amount, err := f.GetCellValue(sheetName, "C4")
	require.NoError(t, err)
	assert.Contains(t, amount, "تومان")
}

func TestBuildEmptyMonth(t *testing.T) {
	rep := &api.SettlementReport{ShamsiYear: 1403, ShamsiMonth: 7}

	data, err := NewExcelWriter(nil).Build(rep, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	placeholder, err := f.GetCellValue(sheetName, "A4")
	require.NoError(t, err)
	assert.Equal(t, "تراکنش پیشنهادی برای تسویه وجود ندارد", placeholder)
}
