package service

import (
	"encoding/json"
	"io"

	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
	"github.com/jengzang/activity-dashboard-go/internal/models"
)

// DecodeActivities reads a JSON array of activities, the shape of an activity export
func DecodeActivities(r io.Reader) ([]models.Activity, error) {
	var acts []models.Activity
	dec := json.NewDecoder(r)
	if err := dec.Decode(&acts); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "malformed activity export")
	}
	if acts == nil {
		acts = []models.Activity{}
	}
	return acts, nil
}
