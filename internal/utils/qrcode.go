package utils

import (
	"encoding/base64"

	"github.com/skip2/go-qrcode"
)

const qrCodeSize = 256

func DriverQRCodeContent(driverID string) string {
	return "QR-" + driverID
}

// GenerateQRCodeImage 返回 base64 编码后的 PNG 图片
func GenerateQRCodeImage(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, qrCodeSize)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
