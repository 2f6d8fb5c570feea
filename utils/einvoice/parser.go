package einvoice

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
	"github.com/golang-jwt/jwt/v4"
)

var ErrNotSignedQR = errors.New("qr payload is not a signed e-invoice")

// signedQRData mirrors the "data" claim of the IRP signed QR code.
type signedQRData struct {
	SellerGstin string      `json:"SellerGstin"`
	BuyerGstin  string      `json:"BuyerGstin"`
	DocNo       string      `json:"DocNo"`
	DocTyp      string      `json:"DocTyp"`
	DocDt       string      `json:"DocDt"`
	TotInvVal   json.Number `json:"TotInvVal"`
	ItemCnt     json.Number `json:"ItemCnt"`
	MainHsnCode string      `json:"MainHsnCode"`
	Irn         string      `json:"Irn"`
	IrnDt       string      `json:"IrnDt"`
}

// ParseSignedQR reads the e-invoice fields from a signed QR payload. The
// signature is not verified; the IRP public key is not available offline.
func ParseSignedQR(payload string) (*dto.EInvoiceData, error) {
	payload = strings.TrimSpace(payload)
	if strings.Count(payload, ".") != 2 {
		return nil, ErrNotSignedQR
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(payload, claims); err != nil {
		return nil, fmt.Errorf("failed to parse signed QR: %w", err)
	}

	raw, ok := claims["data"]
	if !ok {
		return nil, ErrNotSignedQR
	}

	// IRP encodes "data" as a JSON string; some generators embed the object.
	var dataJSON []byte
	switch v := raw.(type) {
	case string:
		dataJSON = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to read data claim: %w", err)
		}
		dataJSON = b
	}

	var data signedQRData
	dec := json.NewDecoder(strings.NewReader(string(dataJSON)))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode data claim: %w", err)
	}
	if data.SellerGstin == "" && data.Irn == "" {
		return nil, ErrNotSignedQR
	}

	total, _ := strconv.ParseFloat(data.TotInvVal.String(), 64)
	count, _ := strconv.Atoi(data.ItemCnt.String())

	return &dto.EInvoiceData{
		SellerGSTIN: data.SellerGstin,
		BuyerGSTIN:  data.BuyerGstin,
		DocNo:       data.DocNo,
		DocType:     data.DocTyp,
		DocDate:     data.DocDt,
		TotalValue:  total,
		ItemCount:   count,
		MainHSNCode: data.MainHsnCode,
		IRN:         data.Irn,
		IRNDate:     data.IrnDt,
	}, nil
}
