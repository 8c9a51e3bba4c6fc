package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/kpi-server/internal/kpi"
)

const dailyCSV = "\ufeffEMP ID, NAME ,Date,Week,Call Count,AHT,Wrap,Hold,Auto On,CSAT Resolution,CSAT Behaviour\n" +
	"1070,Asha,2025-10-13,42.0,12,00:05:30,0:20,0:45,7:00:00,90%,95\n" +
	" 0815 ,Ravi,2025-10-13,42,8,00:06:00,,bad,6:30:00,,\n" +
	",,,,,,,,,,\n" +
	",Nobody,2025-10-13,42,1,0,0,0,0,0,0\n" +
	"1070,Asha,2025-10-14,42,9\n"

func TestReadDaily(t *testing.T) {
	records, err := ReadDaily(strings.NewReader(dailyCSV))

	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "1070", first.EmployeeID)
	assert.Equal(t, "Asha", first.Name)
	assert.Equal(t, "42", first.Week)
	assert.Equal(t, 330.0, kpi.ParseDuration(first.AHT))
	assert.Equal(t, 45.0, kpi.ParseDuration(first.Hold))
	assert.Equal(t, 90.0, kpi.ParsePercentage(first.CSATResolution))

	assert.Equal(t, "0815", records[1].EmployeeID)
	_, ok := kpi.ParseDurationOK(records[1].Hold)
	assert.False(t, ok)

	short := records[2]
	assert.Equal(t, "2025-10-14", short.Date)
	assert.Equal(t, 9.0, kpi.ParseCount(short.CallCount))
	assert.Equal(t, "", short.CSATBehaviour)
}

func TestReadDailyMissingColumn(t *testing.T) {
	_, err := ReadDaily(strings.NewReader("EMP ID,NAME,Date\n1,a,2025-01-01\n"))

	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), `"Week"`)
}

func TestReadEmptyFile(t *testing.T) {
	_, err := ReadCSAT(strings.NewReader(""))

	assert.ErrorContains(t, err, "empty file")
}

func TestReadMalformedCSV(t *testing.T) {
	_, err := ReadCSAT(strings.NewReader("EMP ID,Week\n\"1070,42\n"))

	assert.ErrorContains(t, err, "read csat export")
}

func TestReadCSAT(t *testing.T) {
	input := "EMP ID,NAME,Week,CSAT Resolution,CSAT Behaviour\n" +
		"1070,Asha,42,88%,92%\n" +
		"9999,Ghost,41.0,100,100\n"

	records, err := ReadCSAT(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "42", records[0].Week)
	assert.Equal(t, 88.0, kpi.ParsePercentage(records[0].Resolution))
	assert.Equal(t, "41", records[1].Week)
}

func TestReadMonthly(t *testing.T) {
	input := "EMP ID,NAME,Month,Hold,Wrap,Auto-On,Schedule Adherence,Resolution CSAT,Agent Behaviour,Quality,PKT,SL + UPL,LOGINS," +
		"Hold KPI Score,Auto-On KPI Score,Schedule Adherence KPI Score,Resolution CSAT KPI Score,Agent Behaviour KPI Score,Quality KPI Score,PKT KPI Score,Grand Total," +
		"Target Committed for PKT,Target Committed for CSAT (Agent Behaviour),Target Committed for Quality\n" +
		"1070,Asha, October ,0:00:40,0:00:25,7:10:00,97%,88%,92%,94%,90%,1,22,5,4,5,4,4,4.5,4,4.2,95%,93%,96%\n" +
		"0815,Ravi,sep,0:01:10,0:00:30,6:00:00,91%,80%,85%,88%,80%,2,20,3,3,4,3,3,3,3,3.25,,,\n"

	records, err := ReadMonthly(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 2)

	m := records[0]
	assert.Equal(t, "October", m.Month)
	assert.Equal(t, "0:00:40", m.Hold)
	assert.Equal(t, "94%", m.Quality)
	assert.Equal(t, "22", m.Logins)
	assert.Equal(t, 4.5, m.QualityScore)
	assert.Equal(t, 4.2, m.GrandTotal)
	assert.Equal(t, "95%", m.TargetPKT)
	assert.True(t, m.HasTargets())

	assert.Equal(t, "September", records[1].Month)
	assert.Equal(t, 3.25, records[1].GrandTotal)
	assert.False(t, records[1].HasTargets())
}

func TestReadMonthlyRequiresGrandTotal(t *testing.T) {
	_, err := ReadMonthly(strings.NewReader("EMP ID,Month\n1,October\n"))

	assert.ErrorIs(t, err, ErrMissingColumn)
}
