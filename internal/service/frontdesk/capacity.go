package frontdesk

import (
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// Party 单间房的入住人数
type Party struct {
	Adults    int `json:"adults"`
	Children  int `json:"children"`
	ExtraBeds int `json:"extra_beds"`
}

// PartyField 正在编辑的人数字段
type PartyField string

const (
	FieldAdults    PartyField = "adults"
	FieldChildren  PartyField = "children"
	FieldExtraBeds PartyField = "extra_beds"
)

// EffectiveOccupancy 折算占用：儿童按 0.5 人计，合计后向上取整
func EffectiveOccupancy(p Party) int {
	return p.Adults + (p.Children+1)/2 + p.ExtraBeds
}

// ValidateCapacity 提交时的严格校验，不做任何截断
func ValidateCapacity(p Party, roomType *models.RoomType) error {
	if p.Adults < 1 || p.Children < 0 || p.ExtraBeds < 0 {
		return errors.ErrInvalidParams.WithMessage("入住人数无效").
			WithDetail("adults", p.Adults).
			WithDetail("children", p.Children).
			WithDetail("extra_beds", p.ExtraBeds)
	}
	if occupied := EffectiveOccupancy(p); occupied > roomType.MaxOccupancy {
		return errors.ErrCapacityExceeded.
			WithDetail("room_type_id", roomType.ID).
			WithDetail("max_occupancy", roomType.MaxOccupancy).
			WithDetail("effective_occupancy", occupied)
	}
	return nil
}

// ClampParty 交互编辑时的尽力截断，从不返回错误
//
// 成人至少 1 人；超出上限时按优先级由低到高收缩：先收缩未在编辑的字段
// （额外床位、儿童、成人的顺序），最后才收缩正在编辑的字段。
func ClampParty(p Party, maxOccupancy int, editing PartyField) Party {
	if maxOccupancy < 1 {
		maxOccupancy = 1
	}
	if p.Adults < 1 {
		p.Adults = 1
	}
	if p.Children < 0 {
		p.Children = 0
	}
	if p.ExtraBeds < 0 {
		p.ExtraBeds = 0
	}

	for _, f := range shrinkOrder(editing) {
		if EffectiveOccupancy(p) <= maxOccupancy {
			break
		}
		switch f {
		case FieldExtraBeds:
			p.ExtraBeds = max(0, maxOccupancy-p.Adults-(p.Children+1)/2)
		case FieldChildren:
			p.Children = max(0, maxOccupancy-p.Adults-p.ExtraBeds) * 2
		case FieldAdults:
			p.Adults = max(1, maxOccupancy-(p.Children+1)/2-p.ExtraBeds)
		}
	}
	return p
}

// shrinkOrder 返回收缩顺序：正在编辑的字段排在最后
func shrinkOrder(editing PartyField) []PartyField {
	order := make([]PartyField, 0, 3)
	for _, f := range []PartyField{FieldExtraBeds, FieldChildren, FieldAdults} {
		if f != editing {
			order = append(order, f)
		}
	}
	switch editing {
	case FieldAdults, FieldChildren, FieldExtraBeds:
		order = append(order, editing)
	}
	return order
}
