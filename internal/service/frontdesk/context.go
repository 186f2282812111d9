// Package frontdesk 提供前台预订生命周期与账务结算服务
package frontdesk

import (
	"time"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
)

// RequestContext 单次请求的前台上下文：操作员工、税率快照与请求时刻
//
// 核心规则只从这里读取员工与税率，不访问全局可变状态。
type RequestContext struct {
	StaffID   int64
	StaffName string
	TaxRates  TaxRates
	Now       time.Time
}

// NewRequestContext 创建请求上下文
func NewRequestContext(staffID int64, staffName string, rates TaxRates) *RequestContext {
	return &RequestContext{
		StaffID:   staffID,
		StaffName: staffName,
		TaxRates:  rates,
		Now:       time.Now().UTC(),
	}
}

// Validate 校验员工身份
func (rc *RequestContext) Validate() error {
	if rc == nil || rc.StaffID <= 0 {
		return errors.ErrStaffRequired
	}
	return nil
}

func (rc *RequestContext) now() time.Time {
	if rc == nil || rc.Now.IsZero() {
		return time.Now().UTC()
	}
	return rc.Now.UTC()
}
