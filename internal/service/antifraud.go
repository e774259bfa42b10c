package service

import (
	"regexp"
	"strings"
)

// ProbeSource 探针结果来源
type ProbeSource string

const (
	ProbeClient ProbeSource = "client" // 浏览器侧自检，可被伪造
	ProbeServer ProbeSource = "server" // 服务端从请求头观察
)

// 探针名称，同时作为返回给调用方的 indicator
const (
	ProbeMissingAcceptLanguage = "missing-accept-language"
	ProbeDNTEnabled            = "dnt-enabled"
	ProbeAggressiveCache       = "aggressive-cache-control"
	ProbeAutomationUserAgent   = "suspicious-user-agent"

	ProbeLowStorageQuota       = "low-storage-quota"
	ProbeLocalStorageFailure   = "local-storage-failure"
	ProbeSessionStorageFailure = "session-storage-failure"
	ProbeIndexedDBFailure      = "indexeddb-failure"
	ProbeNoFileSystemAPI       = "missing-filesystem-api"
	ProbeCookiesDisabled       = "cookies-disabled"
	ProbeWebRTCRelayCandidate  = "webrtc-relay-candidate"
	ProbeTimezoneMismatch      = "timezone-mismatch"
	ProbeVPNUserAgent          = "vpn-user-agent"
	ProbeClientVPNFlag         = "client-vpn-flag"
)

// Probe 单个反作弊探针的结果，各探针相互独立且都不可靠
type Probe struct {
	Name     string
	Source   ProbeSource
	Positive bool
}

// Confidence 无痕模式判定置信度
type Confidence string

const (
	ConfidenceLow  Confidence = "low"
	ConfidenceHigh Confidence = "high"
)

// PrivateVerdict 无痕模式投票结果
type PrivateVerdict struct {
	Suspected  bool
	Confidence Confidence
	Indicators []string
}

// VPNVerdict VPN 投票结果
type VPNVerdict struct {
	Suspected  bool
	Indicators []string
}

// highConfidenceServerHits 服务端阳性探针达到该数量时判为高置信度
const highConfidenceServerHits = 2

// EvaluatePrivateBrowsing 计数阈值投票：阳性数 ≥ threshold 即怀疑无痕模式
func EvaluatePrivateBrowsing(probes []Probe, threshold int) PrivateVerdict {
	var (
		indicators []string
		serverHits int
	)
	for _, p := range probes {
		if !p.Positive {
			continue
		}
		indicators = append(indicators, p.Name)
		if p.Source == ProbeServer {
			serverHits++
		}
	}

	confidence := ConfidenceLow
	if serverHits >= highConfidenceServerHits {
		confidence = ConfidenceHigh
	}

	return PrivateVerdict{
		Suspected:  len(indicators) >= threshold,
		Confidence: confidence,
		Indicators: indicators,
	}
}

// EvaluateVPN 任一探针阳性即怀疑 VPN
func EvaluateVPN(probes []Probe) VPNVerdict {
	var indicators []string
	for _, p := range probes {
		if p.Positive {
			indicators = append(indicators, p.Name)
		}
	}
	return VPNVerdict{Suspected: len(indicators) > 0, Indicators: indicators}
}

// ── 探针采集 ──

// RequestHeaders 服务端可观察到的请求头
type RequestHeaders struct {
	UserAgent      string
	AcceptLanguage string
	DNT            string
	CacheControl   string
}

var automationUA = regexp.MustCompile(`(?i)headless|phantom|selenium|webdriver`)

// minAcceptLanguageLen 短于该长度的 Accept-Language 视为被裁剪
const minAcceptLanguageLen = 5

// HeaderProbes 由请求头得到的服务端探针
func HeaderProbes(h RequestHeaders) []Probe {
	cc := strings.ToLower(h.CacheControl)
	return []Probe{
		{Name: ProbeMissingAcceptLanguage, Source: ProbeServer, Positive: len(strings.TrimSpace(h.AcceptLanguage)) < minAcceptLanguageLen},
		{Name: ProbeDNTEnabled, Source: ProbeServer, Positive: strings.TrimSpace(h.DNT) == "1"},
		{Name: ProbeAggressiveCache, Source: ProbeServer, Positive: strings.Contains(cc, "no-store") || strings.Contains(cc, "no-cache")},
	}
}

// AutomationProbe 无头浏览器或自动化工具的 UA 特征
func AutomationProbe(userAgent string) Probe {
	return Probe{Name: ProbeAutomationUserAgent, Source: ProbeServer, Positive: automationUA.MatchString(userAgent)}
}

// ClientStorageReport 浏览器侧存储能力自检结果，字段为 nil 表示未上报
type ClientStorageReport struct {
	StorageQuotaBytes    *int64
	LocalStorageFailed   bool
	SessionStorageFailed bool
	IndexedDBFailed      bool
	FileSystemAPIMissing bool
	CookiesDisabled      bool
}

// ClientPrivateProbes 浏览器侧上报的无痕模式探针
func ClientPrivateProbes(r ClientStorageReport, quotaThreshold int64) []Probe {
	lowQuota := r.StorageQuotaBytes != nil && *r.StorageQuotaBytes < quotaThreshold
	return []Probe{
		{Name: ProbeLowStorageQuota, Source: ProbeClient, Positive: lowQuota},
		{Name: ProbeLocalStorageFailure, Source: ProbeClient, Positive: r.LocalStorageFailed},
		{Name: ProbeSessionStorageFailure, Source: ProbeClient, Positive: r.SessionStorageFailed},
		{Name: ProbeIndexedDBFailure, Source: ProbeClient, Positive: r.IndexedDBFailed},
		{Name: ProbeNoFileSystemAPI, Source: ProbeClient, Positive: r.FileSystemAPIMissing},
		{Name: ProbeCookiesDisabled, Source: ProbeClient, Positive: r.CookiesDisabled},
	}
}

// NetworkReport 浏览器侧网络与时区自检结果
type NetworkReport struct {
	ICECandidateTypes []string
	Timezone          string
	UTCOffsetMinutes  int
	VPNSuspected      bool
}

var suspiciousTimezones = map[string]struct{}{
	"UTC":           {},
	"GMT":           {},
	"Europe/London": {},
}

var vpnUATokens = []string{"vpn", "proxy", "tor"}

// VPNProbes VPN 探针：ICE 候选泄漏、时区名与偏移不符、UA 关键字、客户端自报
func VPNProbes(r NetworkReport, userAgent string) []Probe {
	relay := false
	for _, c := range r.ICECandidateTypes {
		switch strings.ToLower(c) {
		case "relay", "srflx":
			relay = true
		}
	}

	_, generic := suspiciousTimezones[r.Timezone]
	ua := strings.ToLower(userAgent)
	uaHit := false
	for _, tok := range vpnUATokens {
		if strings.Contains(ua, tok) {
			uaHit = true
			break
		}
	}

	return []Probe{
		{Name: ProbeWebRTCRelayCandidate, Source: ProbeClient, Positive: relay},
		{Name: ProbeTimezoneMismatch, Source: ProbeClient, Positive: generic && r.UTCOffsetMinutes != 0},
		{Name: ProbeVPNUserAgent, Source: ProbeServer, Positive: uaHit},
		{Name: ProbeClientVPNFlag, Source: ProbeClient, Positive: r.VPNSuspected},
	}
}
