package model

// buildObjective assembles every economic and preference term the
// MILP minimizes: the nine terms enumerated for this planner's
// objective, plus the EV switch penalty.
func (b *builder) buildObjective() {
	b.objectiveEnergyCost()
	b.objectiveForbiddenImport()
	b.objectiveEarlyFlowTieBreaker()
	b.objectiveBatteryWear()
	b.objectiveBatteryTiming()
	b.objectiveTerminalSoC()
	b.objectiveEVIncentives()
	b.objectiveEVRamp()
	b.objectiveEVAnchor()
	b.objectiveEVSwitch()
}

func (b *builder) exportPrice(t int) float64 {
	price := b.in.ExportPrice[t]
	if bias := b.plant.Grid.PriceBiasPct; bias != nil {
		price *= 1 + *bias/100
	}
	return price
}

func (b *builder) objectiveEnergyCost() {
	for t := 0; t < b.n(); t++ {
		dt := b.dt(t)
		importPrice := b.in.ImportPrice[t]
		exportPrice := b.exportPrice(t)

		b.problem.AddObjCoeff(b.idx.Import[t], importPrice*dt)
		b.problem.AddObjCoeff(b.idx.Export[t], -exportPrice*dt)

		if exportPrice == 0 {
			b.problem.AddObjCoeff(b.idx.Export[t], -epsExport)
		}
	}
}

func (b *builder) objectiveForbiddenImport() {
	for t := 0; t < b.n(); t++ {
		b.problem.AddObjCoeff(b.idx.ImportSlack[t], wViolation*b.dt(t))
	}
}

func (b *builder) objectiveEarlyFlowTieBreaker() {
	for t := 0; t < b.n(); t++ {
		weight := -epsTie / float64(t+1)
		b.problem.AddObjCoeff(b.idx.Import[t], weight)
		b.problem.AddObjCoeff(b.idx.Export[t], weight)
	}
}

func (b *builder) objectiveBatteryWear() {
	for _, inv := range b.plant.Inverters {
		if inv.Battery == nil {
			continue
		}
		charge := b.idx.BatCharge[inv.ID]
		discharge := b.idx.BatDischarge[inv.ID]
		for t := 0; t < b.n(); t++ {
			dt := b.dt(t)
			b.problem.AddObjCoeff(charge[t], inv.Battery.ChargeWearCostPerKWh*dt)
			b.problem.AddObjCoeff(discharge[t], inv.Battery.DischargeWearCostPerKWh*dt)
		}
	}
}

func (b *builder) objectiveBatteryTiming() {
	for _, inv := range b.plant.Inverters {
		if inv.Battery == nil {
			continue
		}
		charge := b.idx.BatCharge[inv.ID]
		discharge := b.idx.BatDischarge[inv.ID]
		for t := 0; t < b.n(); t++ {
			weight := wBatteryTiming * float64(t+1) * b.dt(t)
			b.problem.AddObjCoeff(charge[t], weight)
			b.problem.AddObjCoeff(discharge[t], weight)
		}
	}
}

func (b *builder) objectiveTerminalSoC() {
	for _, inv := range b.plant.Inverters {
		if inv.Battery == nil {
			continue
		}
		energy := b.idx.BatEnergy[inv.ID]
		last := energy[len(energy)-1]
		if v := inv.Battery.TerminalValuePerKWh; v != nil {
			b.problem.AddObjCoeff(last, -*v)
		}
		if slack := b.idx.BatSlack[inv.ID]; slack >= 0 {
			b.problem.AddObjCoeff(slack, wTerminalShortfall)
		}
	}
}

func (b *builder) objectiveEVIncentives() {
	for _, ev := range b.plant.EVs {
		segments := b.idx.EVSegments[ev.ID]
		for i, band := range ev.SoCIncentives {
			b.problem.AddObjCoeff(segments[i], -band.RewardPerKWh)
		}
		// The trailing absorber segment carries no reward.
	}
}

func (b *builder) objectiveEVRamp() {
	for _, ev := range b.plant.EVs {
		ramp := b.idx.EVRamp[ev.ID]
		for t := 1; t < b.n(); t++ {
			b.problem.AddObjCoeff(ramp[t], wRamp)
		}
	}
}

func (b *builder) objectiveEVAnchor() {
	for _, ev := range b.plant.EVs {
		if a := b.idx.EVAnchor[ev.ID]; a >= 0 {
			b.problem.AddObjCoeff(a, wAnchor)
		}
	}
}

func (b *builder) objectiveEVSwitch() {
	for _, ev := range b.plant.EVs {
		sw, ok := b.idx.EVSwitch[ev.ID]
		if !ok {
			continue
		}
		for t := 1; t < b.n(); t++ {
			b.problem.AddObjCoeff(sw[t], *ev.SwitchPenalty)
		}
	}
}
