package service

import (
	"github.com/maamriaabderahmene/greve-ensta/internal/dto"
)

// AntiFraudService 反作弊检测业务接口
type AntiFraudService interface {
	// CheckPrivate 仅依据请求头判断隐私浏览模式，供页面加载时预检
	CheckPrivate(h RequestHeaders) *dto.PrivateCheckResponse
}

type antiFraudService struct {
	threshold int
}

// NewAntiFraudService 创建 AntiFraudService 实例
func NewAntiFraudService(threshold int) AntiFraudService {
	return &antiFraudService{threshold: threshold}
}

func (s *antiFraudService) CheckPrivate(h RequestHeaders) *dto.PrivateCheckResponse {
	probes := append(HeaderProbes(h), AutomationProbe(h.UserAgent))
	v := EvaluatePrivateBrowsing(probes, s.threshold)

	indicators := v.Indicators
	if indicators == nil {
		indicators = []string{}
	}
	return &dto.PrivateCheckResponse{
		IsPrivate:  v.Suspected,
		Indicators: indicators,
		Confidence: string(v.Confidence),
	}
}
