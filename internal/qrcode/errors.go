package qrcode

import "errors"

var (
	ErrEmptyPayload = errors.New("empty QR payload")
	ErrInvalidSize  = errors.New("invalid QR size")
	ErrInvalidLevel = errors.New("invalid error correction level")
	ErrEncode       = errors.New("QR encoding failed")
	ErrLogoRead     = errors.New("cannot read QR logo")
	ErrLogoDecode   = errors.New("cannot decode QR logo")
	ErrWrite        = errors.New("cannot write QR image")
)
