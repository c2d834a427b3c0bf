package rest

import (
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/arklim/subhub-console/internal/core/domain"
)

// Wire shapes follow the admin API field names exactly; conversion to the
// domain types happens at this boundary and nowhere else.

type statusResp struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg"`
}

type platformConfDTO struct {
	Name         string         `json:"name"`
	Categories   map[int]string `json:"categories"`
	EnabledTag   bool           `json:"enabledTag"`
	PlatformName string         `json:"platformName"`
	SiteName     string         `json:"siteName"`
	HasTarget    bool           `json:"hasTarget"`
}

type siteConfDTO struct {
	Name         string `json:"name"`
	EnableCookie bool   `json:"enable_cookie"`
}

type globalConfDTO struct {
	PlatformConf map[string]platformConfDTO `json:"platformConf"`
	SiteConf     map[string]siteConfDTO     `json:"siteConf"`
}

func (d platformConfDTO) toDomain() domain.Platform {
	return domain.Platform{
		PlatformName: d.PlatformName,
		DisplayName:  d.Name,
		SiteName:     d.SiteName,
		HasTarget:    d.HasTarget,
		TagsEnabled:  d.EnabledTag,
		Categories:   d.Categories,
	}
}

type tokenRespDTO struct {
	Token string `json:"token"`
	Type  string `json:"type"`
	ID    int64  `json:"id"`
	Name  string `json:"name"`
}

type subscribeConfigDTO struct {
	PlatformName string   `json:"platformName"`
	Target       string   `json:"target"`
	TargetName   string   `json:"targetName"`
	Cats         []int    `json:"cats"`
	Tags         []string `json:"tags"`
}

type subscribeGroupDTO struct {
	Name       string               `json:"name"`
	Subscribes []subscribeConfigDTO `json:"subscribes"`
}

func (d subscribeConfigDTO) toDomain() domain.SubscribeConfig {
	return domain.SubscribeConfig{
		PlatformName: d.PlatformName,
		Target:       d.Target,
		TargetName:   d.TargetName,
		Categories:   mapset.NewThreadUnsafeSet[int](d.Cats...),
		Tags:         mapset.NewThreadUnsafeSet[string](d.Tags...),
	}
}

func subscribeToDTO(sub domain.SubscribeConfig) subscribeConfigDTO {
	cats := sub.Categories.ToSlice()
	if cats == nil {
		cats = []int{}
	}
	tags := sub.Tags.ToSlice()
	if tags == nil {
		tags = []string{}
	}
	return subscribeConfigDTO{
		PlatformName: sub.PlatformName,
		Target:       sub.Target,
		TargetName:   sub.TargetName,
		Cats:         cats,
		Tags:         tags,
	}
}

type targetNameDTO struct {
	TargetName *string `json:"targetName"`
}

type cookieDTO struct {
	ID             int64             `json:"id"`
	SiteName       string            `json:"site_name"`
	Content        string            `json:"content"`
	CookieName     string            `json:"cookie_name"`
	LastUsage      time.Time         `json:"last_usage"`
	Status         string            `json:"status"`
	CDMilliseconds int64             `json:"cd_milliseconds"`
	IsUniversal    bool              `json:"is_universal"`
	IsAnonymous    bool              `json:"is_anonymous"`
	Tags           map[string]string `json:"tags"`
}

func (d cookieDTO) toDomain() domain.Cookie {
	return domain.Cookie{
		ID:           d.ID,
		SiteName:     d.SiteName,
		Content:      d.Content,
		FriendlyName: d.CookieName,
		LastUsage:    d.LastUsage,
		Status:       domain.CookieStatus(d.Status),
		CooldownMs:   d.CDMilliseconds,
		IsUniversal:  d.IsUniversal,
		IsAnonymous:  d.IsAnonymous,
		Tags:         d.Tags,
	}
}

type cookieTargetDTO struct {
	Target struct {
		PlatformName string `json:"platform_name"`
		TargetName   string `json:"target_name"`
		Target       string `json:"target"`
	} `json:"target"`
	CookieID int64 `json:"cookie_id"`
}

func (d cookieTargetDTO) toDomain() domain.CookieTarget {
	return domain.CookieTarget{
		CookieID:     d.CookieID,
		PlatformName: d.Target.PlatformName,
		Target:       d.Target.Target,
		TargetName:   d.Target.TargetName,
	}
}

type timeWeightDTO struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Weight    int    `json:"weight"`
}

type weightConfigDTO struct {
	Default    int             `json:"default"`
	TimeConfig []timeWeightDTO `json:"time_config"`
}

type targetWeightDTO struct {
	PlatformName string          `json:"platform_name"`
	Target       string          `json:"target"`
	TargetName   string          `json:"target_name"`
	Weight       weightConfigDTO `json:"weight"`
}

func (d weightConfigDTO) toDomain() domain.WeightConfig {
	windows := make([]domain.TimeWeight, 0, len(d.TimeConfig))
	for _, w := range d.TimeConfig {
		windows = append(windows, domain.TimeWeight{Start: w.StartTime, End: w.EndTime, Weight: w.Weight})
	}
	return domain.WeightConfig{Default: d.Default, TimeWindows: windows}
}

func weightToDTO(w domain.WeightConfig) weightConfigDTO {
	windows := make([]timeWeightDTO, 0, len(w.TimeWindows))
	for _, tw := range w.TimeWindows {
		windows = append(windows, timeWeightDTO{StartTime: tw.Start, EndTime: tw.End, Weight: tw.Weight})
	}
	return weightConfigDTO{Default: w.Default, TimeConfig: windows}
}
