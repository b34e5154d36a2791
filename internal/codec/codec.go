package codec

import (
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"gocv.io/x/gocv"
)

const (
	// MaxTransportSide caps either dimension of an encoded image; larger
	// images are downsampled for transport.
	MaxTransportSide = 800

	// DefaultJPEGQuality is the quality used when re-encoding images.
	DefaultJPEGQuality = 85

	// minPayloadBytes is the smallest decoded payload that can plausibly be
	// an image container.
	minPayloadBytes = 64
)

// DecodeError reports a failure to turn a transport string into pixels.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode image: %s: %v", e.Reason, e.Err)
	}
	return "decode image: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a failure to turn pixels into a transport string.
type EncodeError struct {
	Reason string
	Err    error
}

func (e *EncodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("encode image: %s: %v", e.Reason, e.Err)
	}
	return "encode image: " + e.Reason
}

func (e *EncodeError) Unwrap() error { return e.Err }

// StripDataURL removes a data-URL header ("<scheme>,<payload>") if present.
func StripDataURL(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Decode converts a base64 transport string, optionally carrying a data-URL
// prefix, into a 3-channel BGR mat. The caller owns the returned mat.
func Decode(transport string) (gocv.Mat, error) {
	payload := StripDataURL(transport)
	if payload == "" {
		return gocv.NewMat(), &DecodeError{Reason: "empty payload"}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return gocv.NewMat(), &DecodeError{Reason: "invalid base64", Err: err}
	}
	if len(data) < minPayloadBytes {
		return gocv.NewMat(), &DecodeError{Reason: fmt.Sprintf("payload too short (%d bytes)", len(data))}
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), &DecodeError{Reason: "not a decodable image", Err: err}
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), &DecodeError{Reason: "decoded image is empty"}
	}
	return mat, nil
}

// Encode converts a mat into a data-URL JPEG string at the given quality,
// downsampling (aspect ratio preserved) so neither dimension exceeds
// MaxTransportSide.
func Encode(img gocv.Mat, quality int) (string, error) {
	if img.Empty() {
		return "", &EncodeError{Reason: "empty image"}
	}

	mat := img
	if img.Cols() > MaxTransportSide || img.Rows() > MaxTransportSide {
		scale := float64(MaxTransportSide) / float64(max(img.Cols(), img.Rows()))
		newW := int(float64(img.Cols()) * scale)
		newH := int(float64(img.Rows()) * scale)

		resized := gocv.NewMat()
		gocv.Resize(img, &resized, image.Pt(newW, newH), 0, 0, gocv.InterpolationArea)
		defer resized.Close()
		mat = resized
	}

	buf, err := gocv.IMEncodeWithParams(".jpg", mat, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return "", &EncodeError{Reason: "jpeg encode failed", Err: err}
	}
	defer buf.Close()

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.GetBytes()), nil
}
