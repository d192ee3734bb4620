package core

// Mock HAL drivers shared by the core tests

type mockIRQ struct {
	pending     uint32
	mask        uint32
	enabled     bool
	maskHistory []uint32
}

func (m *mockIRQ) Pending() uint32 { return m.pending }
func (m *mockIRQ) Mask() uint32    { return m.mask }
func (m *mockIRQ) EnableGlobal()   { m.enabled = true }

func (m *mockIRQ) SetMask(mask uint32) {
	m.mask = mask
	m.maskHistory = append(m.maskHistory, mask)
}

type mockTimer struct {
	irq     *mockIRQ
	initErr error
	inited  bool
	cleared int
}

func (m *mockTimer) Init() error {
	m.inited = true
	return m.initErr
}

func (m *mockTimer) ClearPending() {
	m.cleared++
	if m.irq != nil {
		m.irq.pending &^= 1 << Timer0Interrupt
	}
}

type mockLED struct {
	on     bool
	writes []bool
}

func (m *mockLED) SetLED(on bool) {
	m.on = on
	m.writes = append(m.writes, on)
}

type mockButtons struct {
	bits uint32
}

func (m *mockButtons) ReadButtons() uint32 { return m.bits }

type mockReset struct {
	writes []uint8
}

func (m *mockReset) WriteReset(value uint8) { m.writes = append(m.writes, value) }

type mockSerial struct {
	connected bool
	rx        []byte
	tx        []byte
	reads     int
	writes    int
	flushes   int
}

func (m *mockSerial) Connected() bool { return m.connected }
func (m *mockSerial) Available() int  { return len(m.rx) }
func (m *mockSerial) Flush()          { m.flushes++ }

func (m *mockSerial) Read(buf []byte) int {
	m.reads++
	n := copy(buf, m.rx)
	m.rx = m.rx[n:]
	return n
}

func (m *mockSerial) Write(data []byte) int {
	m.writes++
	m.tx = append(m.tx, data...)
	return len(data)
}

type mockTransport struct {
	serial    *mockSerial
	cb        DeviceCallbacks
	initErr   error
	inits     int
	services  int
	irqs      int
	onService func(cb DeviceCallbacks)
}

func (m *mockTransport) Init() error {
	m.inits++
	return m.initErr
}

func (m *mockTransport) ServiceStep() {
	m.services++
	if m.onService != nil {
		m.onService(m.cb)
		m.onService = nil
	}
}

func (m *mockTransport) InterruptHandler()               { m.irqs++ }
func (m *mockTransport) SetCallbacks(cb DeviceCallbacks) { m.cb = cb }
func (m *mockTransport) Serial() SerialChannel           { return m.serial }

type testRig struct {
	irq     *mockIRQ
	timer   *mockTimer
	led     *mockLED
	buttons *mockButtons
	reset   *mockReset
	serial  *mockSerial
	usb     *mockTransport
	ctx     *Context
}

func newTestRig() *testRig {
	r := &testRig{
		irq:     &mockIRQ{},
		led:     &mockLED{},
		buttons: &mockButtons{},
		reset:   &mockReset{},
		serial:  &mockSerial{},
	}
	r.timer = &mockTimer{irq: r.irq}
	r.usb = &mockTransport{serial: r.serial}
	r.ctx = NewContext(Board{
		IRQ:    r.irq,
		Timer:  r.timer,
		LED:    r.led,
		Button: r.buttons,
		Reset:  r.reset,
	}, r.usb)
	return r
}
