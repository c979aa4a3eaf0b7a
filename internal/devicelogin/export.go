package devicelogin

import (
	"bytes"
	"encoding/csv"
)

var csvHeader = []string{
	"user_id", "name", "email", "device_id",
	"login_status", "ip_address", "location", "isp", "created_at",
}

// WriteCSV encodes records as CSV with a fixed header row, in the same column
// order the dashboard displays.
func WriteCSV(records []LoginRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, rec := range records {
		row := []string{
			rec.UserID, rec.Name, rec.Email, rec.DeviceID,
			rec.LoginStatus, rec.IPAddress, rec.Location, rec.ISP, rec.CreatedAt,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
