//go:build !linux
// +build !linux

package main

import (
	"github.com/darkroom/agitator/internal/config"
	"github.com/darkroom/agitator/internal/logger"
	"github.com/darkroom/agitator/internal/motor"
)

// initMotor always returns a Mock off Linux: periph.io's sysfs/gpiomem
// backends have nothing to attach to.
func initMotor(cfg config.MotorConfig) motor.Driver {
	logger.Info("non-Linux platform detected, using mock motor driver")
	return motor.NewMock()
}
