package app

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"github.com/vietbooks/bookstore/internal/cart"
	"github.com/vietbooks/bookstore/internal/catalog"
	"github.com/vietbooks/bookstore/pkg/metrics"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.SchedPurgeStaleCarts()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}
}

// SchedPurgeStaleCarts removes cart lines abandoned longer than the
// configured retention.
func (a *Application) SchedPurgeStaleCarts() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	days := a.configManager.GetInt("cart", "purge_days")
	if days <= 0 {
		days = 90
	}

	cartSvc := cart.NewService(cart.NewGormRepository(a.gormDB), catalog.NewGormRepository(a.gormDB))
	removed, err := cartSvc.PurgeStale(context.Background(), days)
	if err != nil {
		zap.L().Error("cart purge failed", zap.Error(err))
		return
	}
	metrics.SetGauge("bookstore_cart_purged", removed)
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	// Collect CPU usage
	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		metrics.SetGauge("system_cpuuse", int64(_cpuuse[0]*100)) // Store as percentage * 100
	}

	// Collect memory usage
	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge("system_memuse", int64(_meminfo.Used/1024/1024))
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge("bookstore_cpuuse", int64(cpuuse*100))
	}

	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge("bookstore_memuse", int64(meminfo.RSS/1024/1024))
	}
}
