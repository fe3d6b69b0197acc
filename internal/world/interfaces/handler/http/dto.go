package http

import (
	"time"

	"Dominion/internal/shared/transport"
	"Dominion/internal/world/entity"
)

type Response struct {
	Code transport.BizCode `json:"code"`
	Msg  string            `json:"msg,omitempty"`
	Data any               `json:"data,omitempty"`
}

type CreateWorldReq struct {
	ID   string `json:"id"`
	Size int    `json:"size" binding:"required,min=1"`
	Seed int64  `json:"seed"`
}

type CreateWorldResp struct {
	ID          entity.WorldID `json:"id"`
	Size        int            `json:"size"`
	Seed        int64          `json:"seed"`
	Provinces   int            `json:"provinces"`
	CreatedAt   time.Time      `json:"created_at"`
	SeasonEndAt time.Time      `json:"season_end_at"`
}

type JoinReq struct {
	Name string `json:"name"`
}

type ClaimReq struct {
	X *int `json:"x" binding:"required"`
	Y *int `json:"y" binding:"required"`
}

type TrainReq struct {
	Unit     string `json:"unit" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required"`
}

type TrainResp struct {
	OrderID string    `json:"order_id"`
	StartAt time.Time `json:"start_at"`
	EndTime time.Time `json:"end_time"`
}

type AdvanceDayReq struct {
	Day int `json:"day" binding:"min=0"`
}

type AdvanceDayResp struct {
	Unlocked int `json:"unlocked"`
}

func toCreateWorldResp(w *entity.World) CreateWorldResp {
	return CreateWorldResp{
		ID:          w.ID,
		Size:        w.Size,
		Seed:        w.Seed,
		Provinces:   len(w.ProvinceSet),
		CreatedAt:   w.CreatedAt,
		SeasonEndAt: w.SeasonEndAt,
	}
}
