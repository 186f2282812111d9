// Package frontdesk 提供前台预订、入住退房与账务的 HTTP Handler
package frontdesk

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk/internal/common/handler"
	frontdeskService "github.com/dumeirei/hotel-frontdesk/internal/service/frontdesk"
)

// requestContext 组装单次请求的前台上下文：当前员工与税率快照
// 未认证时已发送 401，返回 false
func requestContext(c *gin.Context, rates *frontdeskService.TaxRateProvider) (*frontdeskService.RequestContext, bool) {
	staffID, staffName, ok := handler.RequireStaff(c)
	if !ok {
		return nil, false
	}
	return frontdeskService.NewRequestContext(staffID, staffName, rates.GetTaxRates(c.Request.Context())), true
}
