package order

import "strings"

// normalize trims every field and reports the required ones left empty.
func (d Delivery) normalize() (Delivery, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Phone = strings.TrimSpace(d.Phone)
	d.City = strings.TrimSpace(d.City)
	d.Address = strings.TrimSpace(d.Address)
	d.Date = strings.TrimSpace(d.Date)

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", d.Name},
		{"phone", d.Phone},
		{"city", d.City},
		{"address", d.Address},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return Delivery{}, &InvalidDeliveryInfoError{Fields: missing}
	}
	return d, nil
}
