package kernel

// Enter starts the critical section by masking all interrupts. While it is
// held no interrupt handler runs. It does not nest: Enter twice without Exit
// is undefined.
func (k *Kernel) Enter() { k.cpu.Disable() }

// Exit ends the critical section. Interrupts pended meanwhile are taken here.
func (k *Kernel) Exit() { k.cpu.Enable() }
