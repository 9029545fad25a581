// Command plc runs a demonstration PLC program: one cyclic task toggling
// a coil, one edge-triggered task reacting to it, one background task, a
// Modbus TCP master task polling a remote device, and a Modbus TCP slave
// exposing the shared register bank.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	plc "github.com/AndreiLosev/plc"
	"github.com/AndreiLosev/plc/mbaction"
	"github.com/AndreiLosev/plc/mbtransport"
	"github.com/AndreiLosev/plc/regs"
	"github.com/joeycumines/logiface"
)

func main() {
	configPath := flag.String("config", "config/general.yaml", "path to the general configuration file")
	listenAddr := flag.String("listen", "tcp://0.0.0.0:15020", "Modbus TCP slave listen address")
	masterAddr := flag.String("master-addr", "tcp://127.0.0.1:15030", "Modbus TCP master remote device address")
	flag.Parse()

	if err := run(*configPath, *listenAddr, *masterAddr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, listenAddr, masterAddr string) error {
	cfg, err := plc.LoadConfig(configPath)
	if err != nil {
		return err
	}

	log := plc.NewLogger(os.Stdout, logiface.LevelInformational)

	bank := regs.NewBank(regs.Sizes{Coils: 64, Discretes: 64, Holdings: 64, Inputs: 64})

	toggle, err := plc.NewCycleTask("toggle-coil", []plc.Program{
		plc.ProgramFunc(func(bank *regs.Bank) error {
			v, err := bank.Coil(0)
			if err != nil {
				return err
			}
			return bank.SetCoil(0, !v)
		}),
	}, 5, time.Second)
	if err != nil {
		return err
	}

	react, err := plc.NewBitFrontTask("react-to-coil", []plc.Program{
		plc.ProgramFunc(func(bank *regs.Bank) error {
			v, err := bank.Holding(0)
			if err != nil {
				return err
			}
			return bank.SetHolding(0, v+1)
		}),
	}, 1, 0, plc.SourceCoil)
	if err != nil {
		return err
	}

	idle, err := plc.NewBackgroundTask("housekeeping", []plc.Program{
		plc.ProgramFunc(func(*regs.Bank) error { return nil }),
	}, 10)
	if err != nil {
		return err
	}

	slave := mbtransport.NewTCPSlave(listenAddr, 8)
	slaveTask, err := plc.NewCycleTask("modbus-slave", []plc.Program{slave}, 0, 10*time.Millisecond)
	if err != nil {
		return err
	}

	pollHoldings := mbaction.ReadWordsHandler(func(bank *regs.Bank, values []uint16) error {
		return bank.SetHoldings(10, values)
	})
	pollAction, err := mbaction.NewAction(mbaction.ReadHoldingRegisters, 0, 4, mbaction.NewCycleTrigger(2*time.Second), pollHoldings)
	if err != nil {
		return err
	}
	master := mbtransport.NewTCPMaster("remote-plc", masterAddr, 500*time.Millisecond, []*mbaction.Action{pollAction}, log)
	masterTask, err := plc.NewCycleTask("modbus-master", []plc.Program{master}, 2, 2*time.Second)
	if err != nil {
		return err
	}

	sched, err := plc.New(
		[]*plc.Task{toggle, react, idle, masterTask, slaveTask},
		bank,
		plc.WithLogger(log),
		plc.WithMaxWorkTimeForNotCycleTask(cfg.General.TaskSetting.MaxWorkTimeForNotCycleTask),
		plc.WithIdleSleep(cfg.General.TaskSetting.ReturnTimeWork),
	)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer slave.Close()

	err = sched.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}
