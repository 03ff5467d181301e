//go:build dev && integration

package integration

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/mhsenam/rentmio/internal/client"
	"github.com/mhsenam/rentmio/internal/config"
	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/utils"
)

const defaultBaseURL = "http://localhost:8080"

var baseURL string

// TestMain expects a server started with `rentmio serve` against a
// disposable database.
func TestMain(m *testing.M) {
	_ = godotenv.Load()
	utils.InitLogger(config.AppName + "-integration")

	baseURL = os.Getenv("RENTMIO_TEST_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	api, err := client.New(baseURL)
	if err != nil {
		log.Fatalf("bad RENTMIO_TEST_API_URL: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = api.Health(ctx)
	cancel()
	if err != nil {
		log.Fatalf("server at %s is not healthy: %v", baseURL, err)
	}

	os.Exit(m.Run())
}

// =============================================================================
// SHARED HELPER FUNCTIONS
// =============================================================================

// newUser signs up a fresh account and returns a client holding its tokens.
func newUser(t *testing.T, ctx context.Context, name string) (*client.Client, *models.UserProfile) {
	t.Helper()

	api, err := client.New(baseURL)
	require.NoError(t, err)

	email := fmt.Sprintf("%s-%s@rentmio.test", name, uuid.NewString()[:8])
	resp, err := api.SignUp(ctx, email, "correct-horse-battery", name)
	require.NoError(t, err)
	require.NotNil(t, resp.Profile)
	return api, resp.Profile
}

func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for x := 0; x < 64; x++ {
		for y := 0; y < 48; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// createListing publishes a listing in a city unique to the test so
// location searches only see what the test created.
func createListing(t *testing.T, ctx context.Context, host *client.Client, city string, price float64, bedrooms int) *models.Property {
	t.Helper()

	p, err := host.CreateProperty(ctx, dtos.CreatePropertyRequest{
		Title:        "Bright loft near the river",
		Description:  "A quiet two level loft with a balcony, fast wifi and a kitchen stocked for long stays.",
		Location:     "Rua da Prata 12",
		City:         city,
		Price:        price,
		PriceType:    string(models.PriceTypeNight),
		Bedrooms:     bedrooms,
		Bathrooms:    1,
		Guests:       4,
		PropertyType: "apartment",
		Amenities:    []string{"wifi", "kitchen"},
		Latitude:     utils.Ptr(38.7223),
		Longitude:    utils.Ptr(-9.1393),
	}, []client.File{{Name: "front.png", Data: testPNG(t)}})
	require.NoError(t, err)
	require.Equal(t, models.PropertyStatusAvailable, p.Status)
	require.Len(t, p.Images, 1)
	return p
}

func uniqueCity() string {
	return "Town-" + uuid.NewString()[:12]
}
