package libs

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

type TableQRGenerator struct {
	BaseURL string
}

// TableURL is the storefront link encoded in a table's QR code.
func (g TableQRGenerator) TableURL(canteenID int, table string) string {
	params := url.Values{}
	params.Set("canteen", fmt.Sprint(canteenID))
	params.Set("table", table)
	return fmt.Sprintf("%s/table-selection?%s", strings.TrimRight(g.BaseURL, "/"), params.Encode())
}

func (g TableQRGenerator) Generate(canteenID int, table string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(g.TableURL(canteenID, table), qrcode.Medium, size)
}
