package facade

import (
	"net"

	"github.com/sifis-home/netspot-control/internal/apierr"
	"github.com/sifis-home/netspot-control/internal/messages"
	"github.com/sifis-home/netspot-control/internal/netspotcfg"
	"github.com/sifis-home/netspot-control/internal/supervisor"
	"github.com/sifis-home/netspot-control/internal/webhook"
)

// ListProbes returns the {id,name,status} projection for every probe.
func (f *Facade) ListProbes() []supervisor.StatusEntry {
	return f.supervisor.StatusAll()
}

// StartAllProbes fans out StartByID over every configured probe.
func (f *Facade) StartAllProbes() []supervisor.StatusEntry {
	f.supervisor.StartAll()
	return f.supervisor.StatusAll()
}

// StopAllProbes fans out StopByID over every configured probe.
func (f *Facade) StopAllProbes() []supervisor.StatusEntry {
	f.supervisor.StopAll()
	return f.supervisor.StatusAll()
}

// RestartAllProbes fans out RestartByID over every configured probe.
func (f *Facade) RestartAllProbes() []supervisor.StatusEntry {
	f.supervisor.RestartAll()
	return f.supervisor.StatusAll()
}

// ProbeStatus returns one probe's status.
func (f *Facade) ProbeStatus(id int) (supervisor.Status, error) {
	return f.supervisor.StatusByID(id)
}

// StartProbe starts one probe.
func (f *Facade) StartProbe(id int) (supervisor.Status, error) {
	return f.supervisor.StartByID(id)
}

// StopProbe stops one probe.
func (f *Facade) StopProbe(id int) (supervisor.Status, error) {
	return f.supervisor.StopByID(id)
}

// RestartProbe restarts one probe.
func (f *Facade) RestartProbe(id int) (supervisor.Status, error) {
	return f.supervisor.RestartByID(id)
}

// GetProbeConfig returns a probe's stored configuration.
func (f *Facade) GetProbeConfig(id int) (netspotcfg.ProbeConfig, error) {
	cfg, found, err := f.currentStore().GetConfiguration(id)
	if err != nil {
		return netspotcfg.ProbeConfig{}, err
	}
	if !found {
		return netspotcfg.ProbeConfig{}, apierr.Newf(apierr.NotFound, "configuration %d not found", id)
	}
	return cfg, nil
}

// AddProbe persists cfg and registers/starts it with the supervisor,
// rolling the store insert back if the supervisor rejects it.
func (f *Facade) AddProbe(cfg netspotcfg.ProbeConfig) (int, error) {
	id, err := f.currentStore().AddConfiguration(cfg)
	if err != nil {
		return 0, err
	}
	if err := f.supervisor.AddProbe(id, cfg); err != nil {
		_ = f.currentStore().DeleteConfiguration(id)
		return 0, err
	}
	return id, nil
}

// SetProbeConfig overwrites id's stored configuration and reconciles
// the supervisor's live process against it.
func (f *Facade) SetProbeConfig(id int, cfg netspotcfg.ProbeConfig) error {
	if err := f.currentStore().SetConfiguration(id, cfg); err != nil {
		return err
	}
	return f.supervisor.SetProbe(id, cfg)
}

// DeleteProbe stops id (if running) and removes its stored
// configuration.
func (f *Facade) DeleteProbe(id int) error {
	if err := f.supervisor.RemoveProbe(id); err != nil {
		return err
	}
	return f.currentStore().DeleteConfiguration(id)
}

// GetAlarms returns alarm rows via the store's time/last semantics.
func (f *Facade) GetAlarms(after *int64, last *int) ([]messages.AlarmMessage, error) {
	return f.currentStore().GetAlarms(after, last)
}

// GetData returns data rows via the store's time/last semantics.
func (f *Facade) GetData(after *int64, last *int) ([]messages.DataMessage, error) {
	return f.currentStore().GetData(after, last)
}

// SendTestAlarm publishes a synthetic alarm.
func (f *Facade) SendTestAlarm(seed supervisor.TestAlarmSeed) bool {
	return f.supervisor.SendTestAlarm(seed)
}

// AddWebhook persists w and refreshes the dispatcher's snapshot.
func (f *Facade) AddWebhook(w webhook.Webhook) (int, error) {
	id, err := f.currentStore().AddWebhook(w)
	if err != nil {
		return 0, err
	}
	f.refreshWebhooks()
	return id, nil
}

// GetWebhook returns webhook id, or a NotFound error.
func (f *Facade) GetWebhook(id int) (webhook.Webhook, error) {
	w, found, err := f.currentStore().GetWebhook(id)
	if err != nil {
		return webhook.Webhook{}, err
	}
	if !found {
		return webhook.Webhook{}, apierr.Newf(apierr.NotFound, "webhook %d not found", id)
	}
	return w, nil
}

// SetWebhook overwrites webhook id and refreshes the dispatcher.
func (f *Facade) SetWebhook(id int, w webhook.Webhook) error {
	if err := f.currentStore().SetWebhook(id, w); err != nil {
		return err
	}
	f.refreshWebhooks()
	return nil
}

// DeleteWebhook removes webhook id and refreshes the dispatcher.
func (f *Facade) DeleteWebhook(id int) error {
	if err := f.currentStore().DeleteWebhook(id); err != nil {
		return err
	}
	f.refreshWebhooks()
	return nil
}

// ListWebhooks returns the {id,name} projection for every webhook.
func (f *Facade) ListWebhooks() ([]webhook.Item, error) {
	return f.currentStore().ListWebhooks()
}

func (f *Facade) refreshWebhooks() {
	webhooks, err := f.currentStore().GetWebhooks()
	if err != nil {
		return
	}
	f.dispatcher.Update(webhooks)
}

// NetworkInterfaces lists this host's network interface names, used
// so operators can pick a Device value for a probe's configuration
// without shelling out. A thin net.Interfaces() wrapper has no
// ecosystem library equivalent worth pulling in.
func NetworkInterfaces() ([]string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ifaces))
	for _, iface := range ifaces {
		names = append(names, iface.Name)
	}
	return names, nil
}
