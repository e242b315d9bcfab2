package services

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Lukasvo/cookiedoo-filler/internal/models"
	"github.com/Lukasvo/cookiedoo-filler/internal/schemas"
	"github.com/Lukasvo/cookiedoo-filler/internal/shared"
)

// fallbackDimension stands in for a pixel size that cannot be read from the
// image header. The crop box is a display hint, so an oversized box is
// harmless while a missing one rejects the upload.
const fallbackDimension = 2000

// maxImageBytes caps a downloaded source image.
const maxImageBytes = 20 << 20

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// AssetError reports a failed image pipeline step.
type AssetError struct {
	Step   string
	Status int
	Err    error
}

func (e *AssetError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("image %s failed (status %d): %v", e.Step, e.Status, e.Err)
	}
	return fmt.Sprintf("image %s failed: %v", e.Step, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// Signer issues upload signatures. [*CookidooClient] implements it.
type Signer interface {
	ImageSignature(ctx context.Context, params map[string]string) (*UploadSignature, error)
}

// ImagePipeline moves a recipe image from its source URL to the platform's
// asset host: download, read pixel size from the header bytes, obtain a
// signed grant, upload as multipart form data.
type ImagePipeline struct {
	uploadURL  string
	httpClient *http.Client
	signer     Signer
}

// NewImagePipeline builds a pipeline that uploads through the given asset
// host base URL.
func NewImagePipeline(uploadURL string, signer Signer) *ImagePipeline {
	return &ImagePipeline{
		uploadURL:  strings.TrimRight(uploadURL, "/"),
		httpClient: &http.Client{Timeout: 90 * time.Second},
		signer:     signer,
	}
}

// Attach downloads imageURL and uploads it to the asset host, returning the
// asset reference to patch onto a recipe.
func (p *ImagePipeline) Attach(ctx context.Context, imageURL string) (*models.RecipeImage, error) {
	data, err := p.download(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	width, height := ImageDimensions(data)
	crop := fmt.Sprintf("0,0,%d,%d", width, height)

	sig, err := p.signer.ImageSignature(ctx, map[string]string{
		"custom_coordinates": crop,
	})
	if err != nil {
		return nil, &AssetError{Step: "signature", Err: err}
	}

	result, err := p.upload(ctx, data, sig, crop)
	if err != nil {
		return nil, err
	}

	return &models.RecipeImage{
		AssetID:   result.PublicID,
		Extension: result.Format,
		Owned:     true,
	}, nil
}

func (p *ImagePipeline) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, &AssetError{Step: "download",
			Err: fmt.Errorf("%w: bad image url %q", shared.ErrAssetPipeline, imageURL)}
	}
	req.Header.Set("Accept", "image/*")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &AssetError{Step: "download", Err: fmt.Errorf("%w: %v", shared.ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		discard := io.LimitReader(resp.Body, maxBodyBytes)
		io.Copy(io.Discard, discard)
		return nil, &AssetError{Step: "download", Status: resp.StatusCode,
			Err: fmt.Errorf("%w: source refused the image request", shared.ErrAssetPipeline)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, &AssetError{Step: "download", Err: fmt.Errorf("%w: %v", shared.ErrNetwork, err)}
	}
	if len(data) == 0 {
		return nil, &AssetError{Step: "download",
			Err: fmt.Errorf("%w: source returned an empty image", shared.ErrAssetPipeline)}
	}
	return data, nil
}

type uploadResult struct {
	PublicID string `json:"public_id"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

func (p *ImagePipeline) upload(ctx context.Context, data []byte, sig *UploadSignature, crop string) (*uploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"upload_preset", sig.UploadPreset},
		{"signature", sig.Signature},
		{"timestamp", strconv.FormatInt(sig.Timestamp, 10)},
		{"api_key", sig.APIKey},
		{"custom_coordinates", crop},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, &AssetError{Step: "upload", Err: fmt.Errorf("%w: %v", shared.ErrAssetPipeline, err)}
		}
	}
	part, err := w.CreateFormFile("file", imageName(data))
	if err != nil {
		return nil, &AssetError{Step: "upload", Err: fmt.Errorf("%w: %v", shared.ErrAssetPipeline, err)}
	}
	if _, err := part.Write(data); err != nil {
		return nil, &AssetError{Step: "upload", Err: fmt.Errorf("%w: %v", shared.ErrAssetPipeline, err)}
	}
	if err := w.Close(); err != nil {
		return nil, &AssetError{Step: "upload", Err: fmt.Errorf("%w: %v", shared.ErrAssetPipeline, err)}
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", p.uploadURL, sig.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, &AssetError{Step: "upload", Err: fmt.Errorf("%w: %v", shared.ErrAssetPipeline, err)}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &AssetError{Step: "upload", Err: fmt.Errorf("%w: %v", shared.ErrNetwork, err)}
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, &AssetError{Step: "upload", Err: fmt.Errorf("%w: %v", shared.ErrNetwork, err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &AssetError{Step: "upload", Status: resp.StatusCode,
			Err: fmt.Errorf("%w: %s", shared.ErrAssetPipeline, snippet(body))}
	}

	if err := schemas.Validate(schemas.UploadResult, body); err != nil {
		return nil, &AssetError{Step: "upload", Err: err}
	}
	var result uploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &AssetError{Step: "upload", Err: fmt.Errorf("%w: %v", shared.ErrAssetPipeline, err)}
	}
	return &result, nil
}

// ImageDimensions reads the pixel size from PNG or JPEG header bytes without
// decoding the image. Unreadable input falls back to a square of
// fallbackDimension so a crop box can always be built.
func ImageDimensions(data []byte) (width, height int) {
	if w, h, ok := pngDimensions(data); ok {
		return w, h
	}
	if w, h, ok := jpegDimensions(data); ok {
		return w, h
	}
	return fallbackDimension, fallbackDimension
}

// pngDimensions reads the IHDR chunk, which the PNG spec requires to come
// first: signature(8) length(4) type(4) width(4) height(4).
func pngDimensions(data []byte) (int, int, bool) {
	if len(data) < 24 || !bytes.HasPrefix(data, pngSignature) {
		return 0, 0, false
	}
	if string(data[12:16]) != "IHDR" {
		return 0, 0, false
	}
	w := int(binary.BigEndian.Uint32(data[16:20]))
	h := int(binary.BigEndian.Uint32(data[20:24]))
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// jpegDimensions walks the segment chain to the first start-of-frame marker.
// SOFn payload layout: length(2) precision(1) height(2) width(2).
func jpegDimensions(data []byte) (int, int, bool) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, 0, false
	}
	i := 2
	for i+3 < len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		if marker == 0xFF {
			i++
			continue
		}
		if marker >= 0xD0 && marker <= 0xD9 {
			i += 2
			continue
		}
		segLen := int(data[i+2])<<8 | int(data[i+3])
		if segLen < 2 {
			return 0, 0, false
		}
		if isSOF(marker) {
			if i+9 > len(data) {
				return 0, 0, false
			}
			h := int(data[i+5])<<8 | int(data[i+6])
			w := int(data[i+7])<<8 | int(data[i+8])
			if w > 0 && h > 0 {
				return w, h, true
			}
			return 0, 0, false
		}
		i += 2 + segLen
	}
	return 0, 0, false
}

// isSOF reports whether marker is a start-of-frame variant. C4, C8 and CC
// sit in the SOF range but define tables, not frames.
func isSOF(marker byte) bool {
	return marker >= 0xC0 && marker <= 0xCF && marker != 0xC4 && marker != 0xC8 && marker != 0xCC
}

func imageName(data []byte) string {
	if bytes.HasPrefix(data, pngSignature) {
		return "recipe.png"
	}
	return "recipe.jpg"
}
