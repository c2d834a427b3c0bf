package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/arklim/subhub-console/internal/core/domain"
	"github.com/arklim/subhub-console/internal/core/port"
	"github.com/arklim/subhub-console/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestClient stands up a gin router as the fake admin API and wires a
// Client to it through a live session guard.
func newTestClient(t *testing.T, router *gin.Engine) *Client {
	t.Helper()
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	sessions := session.NewStore(zaptest.NewLogger(t))
	if err := sessions.Activate(port.AuthGrant{Token: "test-token", Type: "admin"}); err != nil {
		t.Fatalf("activate: %v", err)
	}
	hc := &http.Client{Transport: session.NewGuard(nil, sessions, zaptest.NewLogger(t))}
	return New(srv.URL, hc, zaptest.NewLogger(t))
}

func TestGlobalConfMapsCapabilities(t *testing.T) {
	router := gin.New()
	router.GET("/global_conf", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"platformConf": gin.H{
				"weibo": gin.H{
					"name":         "新浪微博",
					"categories":   gin.H{"1": "转发", "2": "视频"},
					"enabledTag":   true,
					"platformName": "weibo",
					"siteName":     "weibo.com",
					"hasTarget":    true,
				},
			},
			"siteConf": gin.H{
				"weibo.com": gin.H{"name": "weibo.com", "enable_cookie": true},
			},
		})
	})
	client := newTestClient(t, router)

	caps, err := client.GlobalConf(context.Background())
	if err != nil {
		t.Fatalf("global conf: %v", err)
	}

	p, ok := caps.Platforms["weibo"]
	if !ok {
		t.Fatalf("expected weibo platform, got %v", caps.Platforms)
	}
	if p.DisplayName != "新浪微博" || p.SiteName != "weibo.com" || !p.HasTarget || !p.TagsEnabled {
		t.Fatalf("platform mapped wrong: %+v", p)
	}
	if p.Categories[2] != "视频" {
		t.Fatalf("category keys must be numeric, got %v", p.Categories)
	}
	s, ok := caps.Sites["weibo.com"]
	if !ok || !s.CookieEnabled {
		t.Fatalf("site mapped wrong: %+v", s)
	}
}

func TestAuthReturnsGrant(t *testing.T) {
	router := gin.New()
	router.GET("/auth", func(c *gin.Context) {
		if c.Query("token") != "one-time-code" {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "bad token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": "bearer-value", "type": "admin", "id": int64(42), "name": "ops"})
	})
	client := newTestClient(t, router)

	grant, err := client.Auth(context.Background(), "one-time-code")
	if err != nil {
		t.Fatalf("auth: %v", err)
	}
	if grant.Token != "bearer-value" || grant.Type != "admin" || grant.ID != 42 || grant.Name != "ops" {
		t.Fatalf("unexpected grant: %+v", grant)
	}
}

func TestSubsSortsGroupsAndConvertsSets(t *testing.T) {
	router := gin.New()
	router.GET("/subs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"20200": gin.H{"name": "second group", "subscribes": []gin.H{}},
			"10100": gin.H{"name": "first group", "subscribes": []gin.H{
				{
					"platformName": "weibo",
					"target":       "123456",
					"targetName":   "some blogger",
					"cats":         []int{1, 2},
					"tags":         []string{"news"},
				},
			}},
		})
	})
	client := newTestClient(t, router)

	groups, err := client.Subs(context.Background())
	if err != nil {
		t.Fatalf("subs: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].GroupNumber != "10100" || groups[1].GroupNumber != "20200" {
		t.Fatalf("groups must sort by number: %q, %q", groups[0].GroupNumber, groups[1].GroupNumber)
	}

	sub := groups[0].Subscribes[0]
	if sub.PlatformName != "weibo" || sub.TargetName != "some blogger" {
		t.Fatalf("subscribe mapped wrong: %+v", sub)
	}
	if !sub.Categories.Contains(2) || !sub.Tags.Contains("news") {
		t.Fatalf("sets mapped wrong: cats=%v tags=%v", sub.Categories, sub.Tags)
	}
}

func TestNewSubSendsGroupAndPayload(t *testing.T) {
	var gotGroup string
	var gotBody subscribeConfigDTO
	router := gin.New()
	router.POST("/subs", func(c *gin.Context) {
		gotGroup = c.Query("groupNumber")
		if err := c.ShouldBindJSON(&gotBody); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "msg": ""})
	})
	client := newTestClient(t, router)

	sub := domain.SubscribeConfig{
		PlatformName: "weibo",
		Target:       "123456",
		TargetName:   "some blogger",
		Categories:   mapset.NewThreadUnsafeSet(1),
		Tags:         mapset.NewThreadUnsafeSet[string](),
	}
	if err := client.NewSub(context.Background(), "10100", sub); err != nil {
		t.Fatalf("new sub: %v", err)
	}

	if gotGroup != "10100" {
		t.Fatalf("expected groupNumber query, got %q", gotGroup)
	}
	if gotBody.PlatformName != "weibo" || gotBody.Target != "123456" {
		t.Fatalf("payload mapped wrong: %+v", gotBody)
	}
	if gotBody.Cats == nil || gotBody.Tags == nil {
		t.Fatalf("cats and tags must marshal as arrays, never null: %+v", gotBody)
	}
}

func TestTargetNameNullMeansNotFound(t *testing.T) {
	router := gin.New()
	router.GET("/target_name", func(c *gin.Context) {
		if c.Query("target") == "123456" {
			c.JSON(http.StatusOK, gin.H{"targetName": "some blogger"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"targetName": nil})
	})
	client := newTestClient(t, router)

	name, err := client.TargetName(context.Background(), "weibo", "123456")
	if err != nil || name != "some blogger" {
		t.Fatalf("expected resolved name, got %q, %v", name, err)
	}

	name, err = client.TargetName(context.Background(), "weibo", "missing")
	if err != nil {
		t.Fatalf("null target name is not a transport failure: %v", err)
	}
	if name != "" {
		t.Fatalf("expected empty name for unknown target, got %q", name)
	}
}

func TestRejectedWriteBecomesStatusError(t *testing.T) {
	router := gin.New()
	router.DELETE("/subs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": false, "msg": "subscribe not found"})
	})
	client := newTestClient(t, router)

	err := client.DeleteSub(context.Background(), "10100", "weibo", "123456")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Message != "subscribe not found" {
		t.Fatalf("unexpected message: %q", statusErr.Message)
	}
}

func TestForbiddenMapsToSentinel(t *testing.T) {
	router := gin.New()
	router.GET("/cookie", func(c *gin.Context) {
		c.JSON(http.StatusForbidden, gin.H{"detail": "not a superuser"})
	})
	client := newTestClient(t, router)

	_, err := client.Cookies(context.Background(), port.CookieFilter{})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUnauthorizedMapsToSessionSentinel(t *testing.T) {
	router := gin.New()
	router.GET("/subs", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "token expired"})
	})
	client := newTestClient(t, router)

	_, err := client.Subs(context.Background())
	if !errors.Is(err, session.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestServerErrorCarriesDetail(t *testing.T) {
	router := gin.New()
	router.POST("/cookie", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "cookie is invalid"})
	})
	client := newTestClient(t, router)

	err := client.NewCookie(context.Background(), "weibo.com", "{}")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "cookie is invalid" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestDeleteCookieUsesPathParameter(t *testing.T) {
	var gotID string
	router := gin.New()
	router.DELETE("/cookie/:id", func(c *gin.Context) {
		gotID = c.Param("id")
		c.JSON(http.StatusOK, gin.H{"ok": true, "msg": ""})
	})
	client := newTestClient(t, router)

	if err := client.DeleteCookie(context.Background(), 7); err != nil {
		t.Fatalf("delete cookie: %v", err)
	}
	if gotID != "7" {
		t.Fatalf("expected cookie id in path, got %q", gotID)
	}
}

func TestValidateCookieReturnsProbeResult(t *testing.T) {
	router := gin.New()
	router.POST("/cookie/validate", func(c *gin.Context) {
		ok := c.Query("content") == "good"
		c.JSON(http.StatusOK, gin.H{"ok": ok, "msg": ""})
	})
	client := newTestClient(t, router)

	usable, err := client.ValidateCookie(context.Background(), "weibo.com", "good")
	if err != nil || !usable {
		t.Fatalf("expected usable credential, got %v, %v", usable, err)
	}
	usable, err = client.ValidateCookie(context.Background(), "weibo.com", "bad")
	if err != nil {
		t.Fatalf("a negative probe is an answer, not an error: %v", err)
	}
	if usable {
		t.Fatalf("expected unusable credential")
	}
}

func TestCookieTargetsSendFlattenedQuery(t *testing.T) {
	var gotPlatform, gotTarget, gotCookieID string
	router := gin.New()
	router.POST("/cookie_target", func(c *gin.Context) {
		gotPlatform = c.Query("platform_name")
		gotTarget = c.Query("target")
		gotCookieID = c.Query("cookie_id")
		c.JSON(http.StatusOK, gin.H{"ok": true, "msg": ""})
	})
	router.GET("/cookie_target", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{
			{
				"target": gin.H{
					"platform_name": "weibo",
					"target_name":   "some blogger",
					"target":        "123456",
				},
				"cookie_id": int64(3),
			},
		})
	})
	client := newTestClient(t, router)

	if err := client.NewCookieTarget(context.Background(), "weibo", "123456", 3); err != nil {
		t.Fatalf("new cookie target: %v", err)
	}
	if gotPlatform != "weibo" || gotTarget != "123456" || gotCookieID != "3" {
		t.Fatalf("query mapped wrong: %q %q %q", gotPlatform, gotTarget, gotCookieID)
	}

	targets, err := client.CookieTargets(context.Background(), port.CookieFilter{CookieID: 3})
	if err != nil {
		t.Fatalf("cookie targets: %v", err)
	}
	if len(targets) != 1 || targets[0].CookieID != 3 || targets[0].PlatformName != "weibo" {
		t.Fatalf("nested target mapped wrong: %+v", targets)
	}
}

func TestWeightRoundTrip(t *testing.T) {
	var gotPlatform, gotTarget string
	var gotBody weightConfigDTO
	router := gin.New()
	router.GET("/weight", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{
			{
				"platform_name": "weibo",
				"target":        "123456",
				"target_name":   "some blogger",
				"weight": gin.H{
					"default": 10,
					"time_config": []gin.H{
						{"start_time": "08:00", "end_time": "12:00", "weight": 30},
					},
				},
			},
		})
	})
	router.PUT("/weight", func(c *gin.Context) {
		gotPlatform = c.Query("platformName")
		gotTarget = c.Query("target")
		if err := c.ShouldBindJSON(&gotBody); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "msg": ""})
	})
	client := newTestClient(t, router)

	weights, err := client.Weights(context.Background())
	if err != nil {
		t.Fatalf("weights: %v", err)
	}
	if len(weights) != 1 || weights[0].Weight.Default != 10 || len(weights[0].Weight.TimeWindows) != 1 {
		t.Fatalf("weight list mapped wrong: %+v", weights)
	}
	if weights[0].Weight.TimeWindows[0].Start != "08:00" {
		t.Fatalf("time window mapped wrong: %+v", weights[0].Weight.TimeWindows[0])
	}

	cfg := domain.WeightConfig{
		Default:     20,
		TimeWindows: []domain.TimeWeight{{Start: "18:00", End: "23:00", Weight: 50}},
	}
	if err := client.PutWeight(context.Background(), "weibo", "123456", cfg); err != nil {
		t.Fatalf("put weight: %v", err)
	}
	if gotPlatform != "weibo" || gotTarget != "123456" {
		t.Fatalf("weight query mapped wrong: %q %q", gotPlatform, gotTarget)
	}
	if gotBody.Default != 20 || len(gotBody.TimeConfig) != 1 || gotBody.TimeConfig[0].EndTime != "23:00" {
		t.Fatalf("weight body mapped wrong: %+v", gotBody)
	}
}
