//go:build linux
// +build linux

package main

import (
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/darkroom/agitator/internal/config"
	"github.com/darkroom/agitator/internal/logger"
	"github.com/darkroom/agitator/internal/motor"
)

// initMotor honors the configured backend but only attempts real GPIO on
// ARM (the deployment target); any other architecture or an explicit
// "mock" backend falls back to Mock.
func initMotor(cfg config.MotorConfig) motor.Driver {
	if cfg.Backend != "gpio" {
		logger.Info("motor backend mock selected")
		return motor.NewMock()
	}

	if runtime.GOARCH != "arm" && runtime.GOARCH != "arm64" {
		logger.Warn("gpio backend requested on non-ARM architecture, falling back to mock")
		return motor.NewMock()
	}

	deadTime := time.Duration(cfg.DeadTimeMillis) * time.Millisecond
	driver, err := motor.NewGPIODriver(motor.GPIOConfig{
		ClockwisePin:        cfg.ClockwisePin,
		CounterClockwisePin: cfg.CounterClockwisePin,
		DeadTime:            deadTime,
	})
	if err != nil {
		logger.Error("failed to initialize gpio motor driver, falling back to mock", zap.Error(err))
		return motor.NewMock()
	}
	return driver
}
