package email

const operatorTextTemplate = `New booking inquiry from {{.FullName}}

Name: {{.FullName}}
Email: {{.Email}}
Phone: {{dash .Phone}}
Event date: {{.EventDate}}
Event type: {{.EventType}}
Venue: {{dash .VenueName}}
City: {{dash .City}}
State: {{dash .State}}
Estimated guests: {{dash .GuestCount}}

Event details:
{{dash .Message}}
`

const operatorHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New Booking Inquiry</title>
    <style>
        body { font-family: Georgia, serif; line-height: 1.6; color: #222; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0b0a08; color: #e6c76b; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #faf7ef; }
        td.label { font-weight: bold; color: #555; padding: 4px 12px 4px 0; vertical-align: top; }
        .message-box { background: white; padding: 15px; border-left: 4px solid #c9a43c; margin-top: 10px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>New Booking Inquiry</h1>
        </div>
        <div class="content">
            <table>
                <tr><td class="label">Name</td><td>{{.FullName}}</td></tr>
                <tr><td class="label">Email</td><td>{{.Email}}</td></tr>
                <tr><td class="label">Phone</td><td>{{dash .Phone}}</td></tr>
                <tr><td class="label">Event date</td><td>{{.EventDate}}</td></tr>
                <tr><td class="label">Event type</td><td>{{.EventType}}</td></tr>
                <tr><td class="label">Venue</td><td>{{dash .VenueName}}</td></tr>
                <tr><td class="label">City</td><td>{{dash .City}}</td></tr>
                <tr><td class="label">State</td><td>{{dash .State}}</td></tr>
                <tr><td class="label">Estimated guests</td><td>{{dash .GuestCount}}</td></tr>
            </table>
            <div class="message-box">{{if .Message}}{{.MessageHTML}}{{else}}-{{end}}</div>
        </div>
        <div class="footer">
            <p>Sent from the {{.Site.SiteName}} contact form.</p>
            <p>Reply to this email to answer {{.FullName}} directly.</p>
        </div>
    </div>
</body>
</html>`

const receiptTextTemplate = `Hi {{.FirstName}},

Thanks for reaching out to {{.Site.SiteName}}! We received your booking request and will follow up soon with availability and next steps.

Here is what you sent us:

Name: {{.FullName}}
Email: {{.Email}}
Phone: {{dash .Phone}}
Event date: {{.EventDate}}
Event type: {{.EventType}}
Venue: {{dash .VenueName}}
City: {{dash .City}}
State: {{dash .State}}
Estimated guests: {{dash .GuestCount}}

Event details:
{{dash .Message}}

Questions in the meantime? Write to {{.Site.SupportEmail}}.

-- 
{{.SenderName}}
{{.Site.SiteURL}}
`

const receiptHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>We received your booking request</title>
    <style>
        body { font-family: Georgia, serif; line-height: 1.6; color: #222; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .content { padding: 20px; background: #faf7ef; }
        td.label { font-weight: bold; color: #555; padding: 4px 12px 4px 0; vertical-align: top; }
        .message-box { background: white; padding: 15px; border-left: 4px solid #c9a43c; margin-top: 10px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
        .footer img { max-width: 160px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="content">
            <p>Hi {{.FirstName}},</p>
            <p>Thanks for reaching out to {{.Site.SiteName}}! We received your booking request and will follow up soon with availability and next steps.</p>
            <p>Here is what you sent us:</p>
            <table>
                <tr><td class="label">Name</td><td>{{.FullName}}</td></tr>
                <tr><td class="label">Email</td><td>{{.Email}}</td></tr>
                <tr><td class="label">Phone</td><td>{{dash .Phone}}</td></tr>
                <tr><td class="label">Event date</td><td>{{.EventDate}}</td></tr>
                <tr><td class="label">Event type</td><td>{{.EventType}}</td></tr>
                <tr><td class="label">Venue</td><td>{{dash .VenueName}}</td></tr>
                <tr><td class="label">City</td><td>{{dash .City}}</td></tr>
                <tr><td class="label">State</td><td>{{dash .State}}</td></tr>
                <tr><td class="label">Estimated guests</td><td>{{dash .GuestCount}}</td></tr>
            </table>
            <div class="message-box">{{if .Message}}{{.MessageHTML}}{{else}}-{{end}}</div>
            <p>Questions in the meantime? Write to <a href="mailto:{{.Site.SupportEmail}}">{{.Site.SupportEmail}}</a>.</p>
        </div>
        <div class="footer">
            {{if .Site.LogoURL}}<img src="{{.Site.LogoURL}}" alt="{{.SenderName}}">{{end}}
            <p>{{.SenderName}}</p>
            <p><a href="{{.Site.SiteURL}}">{{.Site.SiteURL}}</a></p>
        </div>
    </div>
</body>
</html>`
