package devicelogin

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	records := []LoginRecord{
		{
			UserID:      "u-1",
			Name:        "Anna Lee",
			Email:       "anna@example.com",
			DeviceID:    "dev-1",
			LoginStatus: "success",
			IPAddress:   "203.0.113.7",
			Location:    "Singapore",
			ISP:         "ExampleNet",
			CreatedAt:   "2024-06-15 18:00:00.500+08:00",
		},
		{
			UserID:      "u-2",
			Name:        `Quote "Me", Please`,
			Email:       "q@example.com",
			DeviceID:    "dev-2",
			LoginStatus: "failed",
			IPAddress:   "203.0.113.9",
			Location:    "Jakarta",
			ISP:         "OtherNet",
			CreatedAt:   "2024-06-14 09:15:00.000+08:00",
		},
	}

	raw, err := WriteCSV(records)
	require.NoError(t, err)

	parsed, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 3)
	require.Equal(t, csvHeader, parsed[0])
	require.Equal(t, "Anna Lee", parsed[1][1])
	require.Equal(t, `Quote "Me", Please`, parsed[2][1])
}

func TestWriteCSVEmpty(t *testing.T) {
	raw, err := WriteCSV(nil)
	require.NoError(t, err)
	parsed, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 1)
}
