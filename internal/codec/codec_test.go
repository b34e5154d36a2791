package codec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// jpegBase64 builds a base64-encoded JPEG of the given size.
func jpegBase64(t *testing.T, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestStripDataURL(t *testing.T) {
	assert.Equal(t, "cGF5bG9hZA==", StripDataURL("data:image/jpeg;base64,cGF5bG9hZA=="))
	assert.Equal(t, "cGF5bG9hZA==", StripDataURL("cGF5bG9hZA=="))
}

func TestDecodeEmptyPayload(t *testing.T) {
	for _, transport := range []string{"", "data:image/jpeg;base64,"} {
		_, err := Decode(transport)

		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr, "transport %q", transport)
	}
}

func TestDecodeInvalidBase64(t *testing.T) {
	_, err := Decode("!!!not-base64!!!")

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestDecodeShortPayload(t *testing.T) {
	short := base64.StdEncoding.EncodeToString([]byte("0123456789"))

	_, err := Decode(short)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestDecodeNotAnImage(t *testing.T) {
	garbage := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("x"), 256))

	_, err := Decode(garbage)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestDecodeWithDataURLPrefix(t *testing.T) {
	transport := "data:image/jpeg;base64," + jpegBase64(t, 120, 80)

	mat, err := Decode(transport)
	require.NoError(t, err)
	defer mat.Close()

	assert.Equal(t, 120, mat.Cols())
	assert.Equal(t, 80, mat.Rows())
	assert.Equal(t, 3, mat.Channels())
}

func TestRoundTripPreservesSmallDimensions(t *testing.T) {
	mat, err := Decode(jpegBase64(t, 320, 240))
	require.NoError(t, err)
	defer mat.Close()

	transport, err := Encode(mat, DefaultJPEGQuality)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(transport, "data:image/jpeg;base64,"))

	decoded, err := Decode(transport)
	require.NoError(t, err)
	defer decoded.Close()

	assert.Equal(t, 320, decoded.Cols())
	assert.Equal(t, 240, decoded.Rows())
}

func TestEncodeDownscalesLargeImages(t *testing.T) {
	mat, err := Decode(jpegBase64(t, 1600, 1200))
	require.NoError(t, err)
	defer mat.Close()

	transport, err := Encode(mat, DefaultJPEGQuality)
	require.NoError(t, err)

	decoded, err := Decode(transport)
	require.NoError(t, err)
	defer decoded.Close()

	// Aspect ratio preserved, neither dimension above the cap.
	assert.Equal(t, 800, decoded.Cols())
	assert.Equal(t, 600, decoded.Rows())
}

func TestEncodeEmptyMat(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	_, err := Encode(empty, DefaultJPEGQuality)

	var encodeErr *EncodeError
	require.True(t, errors.As(err, &encodeErr))
}
