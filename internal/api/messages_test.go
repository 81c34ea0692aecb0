package api

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sifis-home/netspot-control/internal/store"
)

func TestTimeAndLastParamsDefaultsLastWhenBothOmitted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/v1/netspots/alarms", nil)

	after, last, err := timeAndLastParams(c)
	require.NoError(t, err)
	assert.Nil(t, after)
	require.NotNil(t, last)
	assert.Equal(t, store.DefaultQueryLimit, *last)
}

func TestTimeAndLastParamsLeavesExplicitLastUntouched(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/v1/netspots/alarms?last=5", nil)

	after, last, err := timeAndLastParams(c)
	require.NoError(t, err)
	assert.Nil(t, after)
	require.NotNil(t, last)
	assert.Equal(t, 5, *last)
}

func TestTimeAndLastParamsLeavesExplicitTimeUntouched(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/v1/netspots/alarms?time=1000", nil)

	after, last, err := timeAndLastParams(c)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, int64(1000), *after)
	assert.Nil(t, last)
}
