package service

import (
	"bytes"
	"fmt"
	"log"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
	"github.com/Aashish23092/gst-invoice-ocr/utils/einvoice"
	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// QRReader pulls e-invoice metadata from the signed QR printed on GST
// e-invoices.
type QRReader interface {
	ReadEInvoice(imageData []byte) (*dto.EInvoiceData, error)
}

type qrReader struct{}

func NewQRReader() QRReader {
	return &qrReader{}
}

func (q *qrReader) ReadEInvoice(imageData []byte) (*dto.EInvoiceData, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to create binary bitmap: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return nil, fmt.Errorf("failed to decode QR code: %w", err)
	}

	qrText := result.GetText()
	log.Printf("QR code decoded, length: %d bytes", len(qrText))

	return einvoice.ParseSignedQR(qrText)
}
