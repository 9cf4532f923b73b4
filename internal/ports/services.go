package ports

import "github.com/pranshuparmar/ports/pkg/model"

var wellKnown = map[uint16]string{
	21:    "ftp",
	22:    "ssh",
	25:    "smtp",
	53:    "dns",
	80:    "http",
	110:   "pop3",
	143:   "imap",
	443:   "https",
	465:   "smtps",
	587:   "submission",
	993:   "imaps",
	995:   "pop3s",
	1433:  "mssql",
	3306:  "mysql",
	3389:  "rdp",
	5432:  "postgres",
	5672:  "amqp",
	6379:  "redis",
	8080:  "http-alt",
	8443:  "https-alt",
	9200:  "elasticsearch",
	27017: "mongodb",
}

// ServiceName returns the conventional service for port, or "".
func ServiceName(port uint16) string {
	return wellKnown[port]
}

// AnnotateServices fills ServiceName on every record.
func AnnotateServices(records []model.PortRecord) {
	for i := range records {
		records[i].ServiceName = ServiceName(records[i].Port)
	}
}
